package appointment

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("appointment not found")
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCanceled:  true,
}

// ValidationError marks bad input on create/update operations.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

// Appointment is a scheduled therapy session for a patient.
type Appointment struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Input carries the client-writable appointment fields.
type Input struct {
	PatientID int64     `json:"patient_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes"`
}

func (in *Input) validate() error {
	if in.PatientID <= 0 {
		return &ValidationError{Field: "patient_id", Msg: "is required"}
	}
	if in.StartsAt.IsZero() {
		return &ValidationError{Field: "starts_at", Msg: "is required"}
	}
	if in.EndsAt.IsZero() {
		return &ValidationError{Field: "ends_at", Msg: "is required"}
	}
	if !in.EndsAt.After(in.StartsAt) {
		return &ValidationError{Field: "ends_at", Msg: "must be after starts_at"}
	}
	if in.Status == "" {
		in.Status = StatusScheduled
	}
	in.Status = strings.ToLower(in.Status)
	if !validStatuses[in.Status] {
		return &ValidationError{Field: "status", Msg: "must be scheduled, completed or canceled"}
	}
	return nil
}
