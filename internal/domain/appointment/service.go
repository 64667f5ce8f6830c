package appointment

import "context"

// Service manages the appointment agenda.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in *Input) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a := &Appointment{
		PatientID: in.PatientID,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Status:    in.Status,
		Notes:     in.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in *Input) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.PatientID = in.PatientID
	a.StartsAt = in.StartsAt
	a.EndsAt = in.EndsAt
	a.Status = in.Status
	a.Notes = in.Notes
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]*Appointment, int, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}
	if params.Limit > 500 {
		params.Limit = 500
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return s.repo.List(ctx, params)
}
