package assessment

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrTemplateNotFound = errors.New("assessment template not found")
)

// ValidationError marks bad input on create/update operations.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

// Template is a reusable assessment form. Schema is a JSON object
// describing the questions.
type Template struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Schema    json.RawMessage `json:"schema"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Result is one filled-in assessment for a patient. Responses is a JSON
// object keyed by question; Score is optional.
type Result struct {
	ID         int64           `json:"id"`
	TemplateID int64           `json:"template_id"`
	PatientID  int64           `json:"patient_id"`
	Responses  json.RawMessage `json:"responses"`
	Score      *int            `json:"score"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TemplateInput carries the client-writable template fields. On update,
// nil fields keep their current value.
type TemplateInput struct {
	Name   *string         `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

func (in *TemplateInput) validateCreate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return &ValidationError{Field: "name", Msg: "is required"}
	}
	trimmed := strings.TrimSpace(*in.Name)
	in.Name = &trimmed
	if len(in.Schema) == 0 {
		in.Schema = json.RawMessage("{}")
	} else if !json.Valid(in.Schema) {
		return &ValidationError{Field: "schema", Msg: "must be valid JSON"}
	}
	return nil
}

// ResultInput carries the client-writable result fields.
type ResultInput struct {
	TemplateID int64           `json:"template_id"`
	PatientID  int64           `json:"patient_id"`
	Responses  json.RawMessage `json:"responses"`
	Score      *int            `json:"score"`
}

func (in *ResultInput) validate() error {
	if in.TemplateID <= 0 {
		return &ValidationError{Field: "template_id", Msg: "is required"}
	}
	if in.PatientID <= 0 {
		return &ValidationError{Field: "patient_id", Msg: "is required"}
	}
	if len(in.Responses) == 0 {
		in.Responses = json.RawMessage("{}")
	} else if !json.Valid(in.Responses) {
		return &ValidationError{Field: "responses", Msg: "must be valid JSON"}
	}
	return nil
}
