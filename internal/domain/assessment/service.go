package assessment

import (
	"context"
	"encoding/json"
	"strings"
)

// Service manages assessment templates and patient results.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateTemplate(ctx context.Context, in *TemplateInput) (*Template, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	t := &Template{Name: *in.Name, Schema: in.Schema}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

// UpdateTemplate applies a partial update: only the fields present in
// the input change.
func (s *Service) UpdateTemplate(ctx context.Context, id int64, in *TemplateInput) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Msg: "must not be blank"}
		}
		t.Name = name
	}
	if in.Schema != nil {
		if !json.Valid(in.Schema) {
			return nil, &ValidationError{Field: "schema", Msg: "must be valid JSON"}
		}
		t.Schema = in.Schema
	}
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context) ([]*Template, error) {
	return s.repo.ListTemplates(ctx)
}

// CreateResult records a filled-in assessment. The template must exist.
func (s *Service) CreateResult(ctx context.Context, in *ResultInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTemplate(ctx, in.TemplateID); err != nil {
		return nil, err
	}
	res := &Result{
		TemplateID: in.TemplateID,
		PatientID:  in.PatientID,
		Responses:  in.Responses,
		Score:      in.Score,
	}
	if err := s.repo.CreateResult(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) ListResultsByPatient(ctx context.Context, patientID int64) ([]*Result, error) {
	return s.repo.ListResultsByPatient(ctx, patientID)
}
