package patient

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a patient does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("patient not found")
	// ErrCedulaConflict is returned when another record already holds the
	// same normalized cedula.
	ErrCedulaConflict = errors.New("cedula already registered")
	// ErrInvalidCedula is returned for lookups with a cedula that
	// normalizes to nothing.
	ErrInvalidCedula = errors.New("invalid cedula")
	// ErrNotDeleted is returned when restoring a record that is not
	// soft-deleted.
	ErrNotDeleted = errors.New("patient is not deleted")
)

// ValidationError marks bad input on create/update operations.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Patient is a clinical record for a person treated by the practice.
// Cedula holds the document exactly as entered; CedulaNorm its canonical
// form, which carries the uniqueness guarantee. DeletedAt marks
// soft-deleted records that are hidden from regular queries but keep their
// identity and cedula reservation.
type Patient struct {
	ID         int64      `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	BirthDate  *Date      `json:"birth_date"`
	Diagnosis  *string    `json:"diagnosis"`
	Notes      *string    `json:"notes"`
	Cedula     *string    `json:"cedula"`
	CedulaNorm *string    `json:"cedula_norm"`
	UserID     *int64     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

// IsDeleted reports whether the record is soft-deleted.
func (p *Patient) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Input carries the client-writable patient fields for create operations.
// String fields are trimmed before use; a cedula that trims to empty is
// treated as absent.
type Input struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	BirthDate *Date   `json:"birth_date"`
	Diagnosis *string `json:"diagnosis"`
	Notes     *string `json:"notes"`
	Cedula    *string `json:"cedula"`
	UserID    *int64  `json:"user_id"`
}

// Optional is a field of a partial update body. Set reports whether the
// field appeared in the JSON at all; Value is nil for an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// UpdateInput carries a partial patient update: omitted fields keep their
// stored values, fields sent as null are cleared.
type UpdateInput struct {
	FirstName Optional[string] `json:"first_name"`
	LastName  Optional[string] `json:"last_name"`
	BirthDate Optional[Date]   `json:"birth_date"`
	Diagnosis Optional[string] `json:"diagnosis"`
	Notes     Optional[string] `json:"notes"`
	Cedula    Optional[string] `json:"cedula"`
	UserID    Optional[int64]  `json:"user_id"`
}

// trimOpt trims a present string field; a value that trims to empty is
// treated as an explicit null.
func trimOpt(o *Optional[string]) {
	if !o.Set || o.Value == nil {
		return
	}
	t := strings.TrimSpace(*o.Value)
	if t == "" {
		o.Value = nil
		return
	}
	o.Value = &t
}

// validate trims the present fields in place. Names may be changed but
// never cleared.
func (in *UpdateInput) validate() error {
	trimOpt(&in.FirstName)
	trimOpt(&in.LastName)
	trimOpt(&in.Diagnosis)
	trimOpt(&in.Notes)
	trimOpt(&in.Cedula)

	if in.FirstName.Set && in.FirstName.Value == nil {
		return &ValidationError{Field: "first_name", Msg: "cannot be empty"}
	}
	if in.LastName.Set && in.LastName.Value == nil {
		return &ValidationError{Field: "last_name", Msg: "cannot be empty"}
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// validate trims the input in place and checks required fields.
func (in *Input) validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Diagnosis = trimPtr(in.Diagnosis)
	in.Notes = trimPtr(in.Notes)
	in.Cedula = trimPtr(in.Cedula)

	if in.FirstName == "" {
		return &ValidationError{Field: "first_name", Msg: "is required"}
	}
	if in.LastName == "" {
		return &ValidationError{Field: "last_name", Msg: "is required"}
	}
	return nil
}
