package patient

import (
	"context"
	"time"
)

// TxRunner executes fn atomically. The Postgres implementation wraps fn in
// a transaction carried on the context; tests can call fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Passthrough is a TxRunner without transactional guarantees, for tests
// and for backends that do not need them.
func Passthrough(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service owns the patient lifecycle: identity normalization, the cedula
// uniqueness guard, soft delete and restore, and the query layer.
type Service struct {
	repo Repository
	tx   TxRunner
	now  func() time.Time
}

func NewService(repo Repository, tx TxRunner) *Service {
	if tx == nil {
		tx = Passthrough
	}
	return &Service{repo: repo, tx: tx, now: time.Now}
}

// ensureUniqueCedula rejects the normalized cedula when another record
// holds it. Soft-deleted records still count: their reservation survives
// until the record is hard-deleted.
func (s *Service) ensureUniqueCedula(ctx context.Context, norm string, excludeID int64) error {
	if norm == "" {
		return nil
	}
	exists, err := s.repo.CedulaExists(ctx, norm, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrCedulaConflict
	}
	return nil
}

// applyCedula normalizes the input cedula onto the patient record. An
// input cedula that normalizes to nothing stores NULL in both columns.
func applyCedula(p *Patient, in *Input) {
	p.Cedula = in.Cedula
	p.CedulaNorm = nil
	if in.Cedula != nil {
		if norm := NormalizeCedula(*in.Cedula); norm != "" {
			p.CedulaNorm = &norm
		}
	}
}

// Create registers a new patient. The uniqueness check and the insert run
// in one transaction; the partial unique index backs the check up against
// concurrent writers.
func (s *Service) Create(ctx context.Context, in *Input) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Patient{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BirthDate: in.BirthDate,
		Diagnosis: in.Diagnosis,
		Notes:     in.Notes,
		UserID:    in.UserID,
	}
	applyCedula(p, in)

	err := s.tx(ctx, func(ctx context.Context) error {
		norm := ""
		if p.CedulaNorm != nil {
			norm = *p.CedulaNorm
		}
		if err := s.ensureUniqueCedula(ctx, norm, 0); err != nil {
			return err
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a patient by id. Soft-deleted records are only visible when
// includeDeleted is set, which callers must reserve for admins.
func (s *Service) Get(ctx context.Context, id int64, includeDeleted bool) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsDeleted() && !includeDeleted {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetByCedula resolves an active patient by any spelling of their cedula.
func (s *Service) GetByCedula(ctx context.Context, doc string) (*Patient, error) {
	norm := NormalizeCedula(doc)
	if norm == "" {
		return nil, ErrInvalidCedula
	}
	return s.repo.GetByCedulaNorm(ctx, norm)
}

// Update applies a partial update to an active patient: only fields
// present in the body change, a field sent as null is cleared. Changing
// the cedula re-runs the uniqueness guard, excluding the record itself so
// an unchanged cedula never conflicts.
func (s *Service) Update(ctx context.Context, id int64, in *UpdateInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *Patient
	err := s.tx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.IsDeleted() {
			return ErrNotFound
		}

		if in.FirstName.Set {
			p.FirstName = *in.FirstName.Value
		}
		if in.LastName.Set {
			p.LastName = *in.LastName.Value
		}
		if in.BirthDate.Set {
			p.BirthDate = in.BirthDate.Value
		}
		if in.Diagnosis.Set {
			p.Diagnosis = in.Diagnosis.Value
		}
		if in.Notes.Set {
			p.Notes = in.Notes.Value
		}
		if in.UserID.Set {
			p.UserID = in.UserID.Value
		}
		if in.Cedula.Set {
			p.Cedula = in.Cedula.Value
			p.CedulaNorm = nil
			if in.Cedula.Value != nil {
				if norm := NormalizeCedula(*in.Cedula.Value); norm != "" {
					p.CedulaNorm = &norm
				}
			}
		}

		norm := ""
		if p.CedulaNorm != nil {
			norm = *p.CedulaNorm
		}
		if err := s.ensureUniqueCedula(ctx, norm, id); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete hides an active patient. Deleting an already-deleted or
// missing record is ErrNotFound.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id, s.now().UTC())
}

// Restore brings a soft-deleted patient back. Restoring an active or
// missing record is ErrNotFound.
func (s *Service) Restore(ctx context.Context, id int64) (*Patient, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// HardDelete permanently removes a record regardless of its lifecycle
// state, releasing its cedula reservation.
func (s *Service) HardDelete(ctx context.Context, id int64) error {
	return s.repo.HardDelete(ctx, id)
}

// List returns a filtered, sorted page of patients plus the total match
// count.
func (s *Service) List(ctx context.Context, params ListParams) ([]*Patient, int, error) {
	params.normalize()
	return s.repo.List(ctx, params)
}
