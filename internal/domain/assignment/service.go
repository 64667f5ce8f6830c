package assignment

import (
	"context"
	"time"
)

// Service manages home-practice assignments.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in *Input) (*Assignment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a := &Assignment{
		PatientID:   in.PatientID,
		Title:       in.Title,
		Description: in.Description,
		DueAt:       in.DueAt,
		Status:      in.Status,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Assignment, error) {
	return s.repo.GetByID(ctx, id)
}

// Complete marks an assignment done and stamps the completion time.
// Completing an already done assignment just refreshes the stamp.
func (s *Service) Complete(ctx context.Context, id int64) (*Assignment, error) {
	at := s.now().UTC()
	if err := s.repo.MarkDone(ctx, id, at); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*Assignment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
