package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"
)

type mockRepo struct {
	templates map[int64]*Template
	results   map[int64]*Result
	nextTplID int64
	nextResID int64
	now       time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		templates: make(map[int64]*Template),
		results:   make(map[int64]*Result),
		now:       time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepo) CreateTemplate(_ context.Context, t *Template) error {
	m.nextTplID++
	t.ID = m.nextTplID
	t.CreatedAt = m.now
	t.UpdatedAt = m.now
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetTemplate(_ context.Context, id int64) (*Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) UpdateTemplate(_ context.Context, t *Template) error {
	if _, ok := m.templates[t.ID]; !ok {
		return ErrTemplateNotFound
	}
	t.UpdatedAt = m.now.Add(time.Hour)
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockRepo) ListTemplates(_ context.Context) ([]*Template, error) {
	var all []*Template
	for _, t := range m.templates {
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, nil
}

func (m *mockRepo) CreateResult(_ context.Context, r *Result) error {
	if _, ok := m.templates[r.TemplateID]; !ok {
		return ErrTemplateNotFound
	}
	m.nextResID++
	r.ID = m.nextResID
	r.CreatedAt = m.now
	r.UpdatedAt = m.now
	cp := *r
	m.results[r.ID] = &cp
	return nil
}

func (m *mockRepo) ListResultsByPatient(_ context.Context, patientID int64) ([]*Result, error) {
	var all []*Result
	for _, r := range m.results {
		if r.PatientID != patientID {
			continue
		}
		cp := *r
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func strPtr(s string) *string { return &s }

func mustCreateTemplate(t *testing.T, svc *Service, name string) *Template {
	t.Helper()
	tpl, err := svc.CreateTemplate(context.Background(), &TemplateInput{Name: strPtr(name)})
	if err != nil {
		t.Fatalf("creating template: %v", err)
	}
	return tpl
}

func TestCreateTemplate_Defaults(t *testing.T) {
	svc, _ := newTestService()

	tpl := mustCreateTemplate(t, svc, "Articulation screener")
	if tpl.ID == 0 {
		t.Error("expected assigned id")
	}
	if string(tpl.Schema) != "{}" {
		t.Errorf("expected empty schema object, got %s", tpl.Schema)
	}
}

func TestCreateTemplate_RequiresName(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateTemplate(context.Background(), &TemplateInput{Name: strPtr("  ")})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected name validation error, got %v", err)
	}
}

func TestUpdateTemplate_Partial(t *testing.T) {
	svc, _ := newTestService()
	tpl, err := svc.CreateTemplate(context.Background(), &TemplateInput{
		Name:   strPtr("Screener"),
		Schema: json.RawMessage(`{"q1":"name the picture"}`),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Only the name changes; the schema must survive.
	updated, err := svc.UpdateTemplate(context.Background(), tpl.ID, &TemplateInput{Name: strPtr("Screener v2")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Screener v2" {
		t.Errorf("expected renamed template, got %q", updated.Name)
	}
	if string(updated.Schema) != `{"q1":"name the picture"}` {
		t.Errorf("expected schema preserved, got %s", updated.Schema)
	}
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateTemplate(context.Background(), 99, &TemplateInput{Name: strPtr("x")})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestListTemplates_NewestFirst(t *testing.T) {
	svc, _ := newTestService()
	mustCreateTemplate(t, svc, "first")
	mustCreateTemplate(t, svc, "second")

	templates, err := svc.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[0].Name != "second" {
		t.Errorf("expected newest first, got %q", templates[0].Name)
	}
}

func TestCreateResult(t *testing.T) {
	svc, _ := newTestService()
	tpl := mustCreateTemplate(t, svc, "Screener")

	score := 42
	res, err := svc.CreateResult(context.Background(), &ResultInput{
		TemplateID: tpl.ID,
		PatientID:  7,
		Responses:  json.RawMessage(`{"q1":"dog"}`),
		Score:      &score,
	})
	if err != nil {
		t.Fatalf("create result: %v", err)
	}
	if res.ID == 0 {
		t.Error("expected assigned id")
	}
	if res.Score == nil || *res.Score != 42 {
		t.Errorf("unexpected score: %v", res.Score)
	}
}

func TestCreateResult_MissingTemplate(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateResult(context.Background(), &ResultInput{TemplateID: 42, PatientID: 7})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestListResultsByPatient(t *testing.T) {
	svc, _ := newTestService()
	tpl := mustCreateTemplate(t, svc, "Screener")

	for _, pid := range []int64{7, 7, 8} {
		if _, err := svc.CreateResult(context.Background(), &ResultInput{TemplateID: tpl.ID, PatientID: pid}); err != nil {
			t.Fatalf("create result: %v", err)
		}
	}

	results, err := svc.ListResultsByPatient(context.Background(), 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID < results[1].ID {
		t.Error("expected newest first")
	}
}
