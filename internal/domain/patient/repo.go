package patient

import (
	"context"
	"time"
)

// Repository is the persistence contract for patient records.
//
// GetByID returns soft-deleted rows as well; visibility is decided by the
// service. SoftDelete and Restore are conditional updates that return
// ErrNotFound when no row is in the required state, so the lifecycle
// transition and its precondition check are a single statement.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByCedulaNorm(ctx context.Context, norm string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]*Patient, int, error)
	CedulaExists(ctx context.Context, norm string, excludeID int64) (bool, error)
}
