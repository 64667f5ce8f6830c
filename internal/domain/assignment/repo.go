package assignment

import (
	"context"
	"time"
)

// Repository is the persistence contract for assignments. Listings are
// ordered by id descending, newest first.
type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id int64) (*Assignment, error)
	MarkDone(ctx context.Context, id int64, completedAt time.Time) error
	ListByPatient(ctx context.Context, patientID int64) ([]*Assignment, error)
}
