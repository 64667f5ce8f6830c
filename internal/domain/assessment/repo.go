package assessment

import "context"

// Repository is the persistence contract for assessment templates and
// results. Listings are ordered by id descending, newest first.
type Repository interface {
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id int64) (*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
	ListTemplates(ctx context.Context) ([]*Template, error)

	CreateResult(ctx context.Context, r *Result) error
	ListResultsByPatient(ctx context.Context, patientID int64) ([]*Result, error)
}
