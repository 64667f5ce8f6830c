package plan

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrPlanNotFound = errors.New("treatment plan not found")
)

// Treatment plan statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusArchived:  true,
}

// ValidationError marks bad input on create/update operations.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

// TreatmentPlan groups the therapy goals for one patient. Goals is a
// JSON array of objects like {"title": ..., "target": ..., "metric": ...}.
type TreatmentPlan struct {
	ID        int64           `json:"id"`
	PatientID int64           `json:"patient_id"`
	Title     string          `json:"title"`
	Goals     json.RawMessage `json:"goals"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// SessionLog records the outcome of one therapy session against a plan.
// Progress maps goal index to a measured value.
type SessionLog struct {
	ID       int64              `json:"id"`
	PlanID   int64              `json:"plan_id"`
	Date     time.Time          `json:"date"`
	Progress map[string]float64 `json:"progress"`
	Notes    *string            `json:"notes"`
}

// PlanInput carries the client-writable plan fields.
type PlanInput struct {
	PatientID int64           `json:"patient_id"`
	Title     string          `json:"title"`
	Goals     json.RawMessage `json:"goals"`
	Status    string          `json:"status"`
}

func (in *PlanInput) validate() error {
	if in.PatientID <= 0 {
		return &ValidationError{Field: "patient_id", Msg: "is required"}
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &ValidationError{Field: "title", Msg: "is required"}
	}
	if len(in.Goals) == 0 {
		in.Goals = json.RawMessage("[]")
	} else if !json.Valid(in.Goals) {
		return &ValidationError{Field: "goals", Msg: "must be valid JSON"}
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	in.Status = strings.ToLower(in.Status)
	if !validStatuses[in.Status] {
		return &ValidationError{Field: "status", Msg: "must be active, completed or archived"}
	}
	return nil
}

// LogInput carries the client-writable session log fields. The plan id
// comes from the URL.
type LogInput struct {
	Date     *time.Time         `json:"date"`
	Progress map[string]float64 `json:"progress"`
	Notes    *string            `json:"notes"`
}
