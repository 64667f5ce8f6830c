package plan

import (
	"context"
	"time"
)

// Service manages treatment plans and their session logs.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreatePlan(ctx context.Context, in *PlanInput) (*TreatmentPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &TreatmentPlan{
		PatientID: in.PatientID,
		Title:     in.Title,
		Goals:     in.Goals,
		Status:    in.Status,
	}
	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPlan(ctx context.Context, id int64) (*TreatmentPlan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *Service) UpdatePlan(ctx context.Context, id int64, in *PlanInput) (*TreatmentPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	p.PatientID = in.PatientID
	p.Title = in.Title
	p.Goals = in.Goals
	p.Status = in.Status
	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePlan(ctx context.Context, id int64) error {
	return s.repo.DeletePlan(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context, patientID int64, params ListParams) ([]*TreatmentPlan, int, error) {
	params = clamp(params)
	return s.repo.ListPlansByPatient(ctx, patientID, params)
}

// CreateLog records a session against an existing plan. A missing plan is
// reported as ErrPlanNotFound, never as a dangling log.
func (s *Service) CreateLog(ctx context.Context, planID int64, in *LogInput) (*SessionLog, error) {
	if _, err := s.repo.GetPlan(ctx, planID); err != nil {
		return nil, err
	}
	l := &SessionLog{
		PlanID:   planID,
		Progress: in.Progress,
		Notes:    in.Notes,
	}
	if in.Date != nil {
		l.Date = *in.Date
	} else {
		l.Date = s.now().UTC()
	}
	if l.Progress == nil {
		l.Progress = map[string]float64{}
	}
	if err := s.repo.CreateLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ListLogs(ctx context.Context, planID int64, params ListParams) ([]*SessionLog, int, error) {
	if _, err := s.repo.GetPlan(ctx, planID); err != nil {
		return nil, 0, err
	}
	params = clamp(params)
	return s.repo.ListLogs(ctx, planID, params)
}

func clamp(params ListParams) ListParams {
	if params.Limit <= 0 {
		params.Limit = 50
	}
	if params.Limit > 500 {
		params.Limit = 500
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.Order != "desc" {
		params.Order = "asc"
	}
	return params
}
