package assignment

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("assignment not found")

// Assignment statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// ValidationError marks bad input on create operations.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

// Assignment is a home-practice task handed to a patient.
type Assignment struct {
	ID          int64      `json:"id"`
	PatientID   int64      `json:"patient_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Input carries the client-writable assignment fields.
type Input struct {
	PatientID   int64      `json:"patient_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Status      string     `json:"status"`
}

func (in *Input) validate() error {
	if in.PatientID <= 0 {
		return &ValidationError{Field: "patient_id", Msg: "is required"}
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &ValidationError{Field: "title", Msg: "is required"}
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	in.Status = strings.ToLower(in.Status)
	if in.Status != StatusPending && in.Status != StatusDone {
		return &ValidationError{Field: "status", Msg: "must be pending or done"}
	}
	return nil
}
