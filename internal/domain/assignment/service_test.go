package assignment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type mockRepo struct {
	assignments map[int64]*Assignment
	nextID      int64
	now         time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		assignments: make(map[int64]*Assignment),
		now:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Assignment) error {
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = m.now
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) MarkDone(_ context.Context, id int64, completedAt time.Time) error {
	a, ok := m.assignments[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusDone
	at := completedAt
	a.CompletedAt = &at
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64) ([]*Assignment, error) {
	var all []*Assignment
	for _, a := range m.assignments {
		if a.PatientID != patientID {
			continue
		}
		cp := *a
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), &Input{PatientID: 1, Title: "Practice /s/ words"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, a.Status)
	}
	if a.CompletedAt != nil {
		t.Error("expected no completion stamp on a new assignment")
	}
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), &Input{PatientID: 1, Title: " "})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}
}

func TestCreate_BadStatus(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), &Input{PatientID: 1, Title: "x", Status: "started"})
	if err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestComplete(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), &Input{PatientID: 1, Title: "Practice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := svc.Complete(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusDone {
		t.Errorf("expected status %q, got %q", StatusDone, done.Status)
	}
	want := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if done.CompletedAt == nil || !done.CompletedAt.Equal(want) {
		t.Errorf("expected completion at %v, got %v", want, done.CompletedAt)
	}
}

func TestComplete_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Complete(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByPatient_NewestFirst(t *testing.T) {
	svc, _ := newTestService()

	for _, tc := range []struct {
		patientID int64
		title     string
	}{
		{1, "first"},
		{1, "second"},
		{2, "other"},
	} {
		if _, err := svc.Create(context.Background(), &Input{PatientID: tc.patientID, Title: tc.title}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	assignments, err := svc.ListByPatient(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if assignments[0].Title != "second" {
		t.Errorf("expected newest first, got %q", assignments[0].Title)
	}
}
