package assignment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newHandlerFixture(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc, _ := newTestService()
	return NewHandler(svc), svc
}

func request(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	return httpErr.Code
}

func TestHandler_Create(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, rec := request(t, http.MethodPost, "/api/v1/assignments",
		`{"patient_id":1,"title":"Practice /s/ words","due_at":"2025-06-10T00:00:00Z"}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var a Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if a.ID == 0 {
		t.Error("expected assigned id")
	}
	if a.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, a.Status)
	}
}

func TestHandler_Create_MissingTitle(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, _ := request(t, http.MethodPost, "/api/v1/assignments", `{"patient_id":1}`)
	if code := statusOf(t, h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestHandler_Complete(t *testing.T) {
	h, svc := newHandlerFixture(t)
	a, err := svc.Create(context.Background(), &Input{PatientID: 1, Title: "Practice"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := request(t, http.MethodPost, "/api/v1/assignments/"+strconv.FormatInt(a.ID, 10)+"/complete", "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(a.ID, 10))

	if err := h.Complete(c); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var done Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &done); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if done.Status != StatusDone || done.CompletedAt == nil {
		t.Errorf("expected completed assignment, got %+v", done)
	}
}

func TestHandler_Complete_NotFound(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, _ := request(t, http.MethodPost, "/api/v1/assignments/99/complete", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	if code := statusOf(t, h.Complete(c)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestHandler_ListByPatient(t *testing.T) {
	h, svc := newHandlerFixture(t)
	if _, err := svc.Create(context.Background(), &Input{PatientID: 7, Title: "Practice"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := request(t, http.MethodGet, "/api/v1/assignments/patient/7", "")
	c.SetParamNames("patient_id")
	c.SetParamValues("7")

	if err := h.ListByPatient(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var assignments []*Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &assignments); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(assignments))
	}
}
