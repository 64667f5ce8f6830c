package patient

import "time"

// ListParams are the filter, sort and page arguments for patient queries.
// Zero values mean "no filter". IncludeDeleted must only be set for admin
// callers; every other caller sees active records exclusively.
type ListParams struct {
	Query          string // matches first name, last name, diagnosis or raw cedula
	Diagnosis      string
	Cedula         string // exact normalized match or raw substring
	BirthFrom      *time.Time
	BirthTo        *time.Time
	CreatedFrom    *time.Time // start of day
	CreatedTo      *time.Time // end of day
	IncludeDeleted bool
	Sort           string
	Limit          int
	Offset         int
}

const (
	DefaultSort  = "-created_at"
	DefaultLimit = 50
	MaxLimit     = 500
)

// sortable maps permitted sort keys to ORDER BY clauses. Unknown keys fall
// back to DefaultSort, so client input never reaches the SQL text. Non-id
// keys carry an id tiebreak: without it rows with equal sort values come
// back in arbitrary order and pages can repeat or skip records.
var sortable = map[string]string{
	"id":          "id ASC",
	"-id":         "id DESC",
	"created_at":  "created_at ASC, id ASC",
	"-created_at": "created_at DESC, id DESC",
	"first_name":  "first_name ASC, id ASC",
	"-first_name": "first_name DESC, id DESC",
	"last_name":   "last_name ASC, id ASC",
	"-last_name":  "last_name DESC, id DESC",
	"birth_date":  "birth_date ASC, id ASC",
	"-birth_date": "birth_date DESC, id DESC",
	"cedula":      "cedula ASC, id ASC",
	"-cedula":     "cedula DESC, id DESC",
}

// OrderClause resolves the params' sort key against the allow list.
func (p ListParams) OrderClause() string {
	if clause, ok := sortable[p.Sort]; ok {
		return clause
	}
	return sortable[DefaultSort]
}

// normalize clamps paging values into their legal ranges.
func (p *ListParams) normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
