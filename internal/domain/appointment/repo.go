package appointment

import "context"

// ListParams filter and page the appointment agenda, which is always
// ordered by start time.
type ListParams struct {
	PatientID int64 // 0 means all patients
	Limit     int
	Offset    int
}

// Repository is the persistence contract for appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]*Appointment, int, error)
}
