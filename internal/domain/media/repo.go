package media

import "context"

// Repository is the persistence contract for media file metadata.
// Listings are ordered by id descending, newest first.
type Repository interface {
	Create(ctx context.Context, f *File) error
	GetByID(ctx context.Context, id int64) (*File, error)
	Delete(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64) ([]*File, error)
}
