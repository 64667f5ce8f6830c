package plan

import "context"

// ListParams page plan and log listings. Order is "asc" or "desc" over id.
type ListParams struct {
	Order  string
	Limit  int
	Offset int
}

// Repository is the persistence contract for treatment plans and their
// session logs.
type Repository interface {
	CreatePlan(ctx context.Context, p *TreatmentPlan) error
	GetPlan(ctx context.Context, id int64) (*TreatmentPlan, error)
	UpdatePlan(ctx context.Context, p *TreatmentPlan) error
	DeletePlan(ctx context.Context, id int64) error
	ListPlansByPatient(ctx context.Context, patientID int64, params ListParams) ([]*TreatmentPlan, int, error)

	CreateLog(ctx context.Context, l *SessionLog) error
	ListLogs(ctx context.Context, planID int64, params ListParams) ([]*SessionLog, int, error)
}
