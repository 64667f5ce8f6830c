package plan

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

func TestHandler_CreatePlan(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, rec := request(t, http.MethodPost, "/api/v1/plans",
		`{"patient_id":1,"title":"Articulation /r/","goals":[{"title":"initial /r/","target":0.8,"metric":"accuracy"}]}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var p TreatmentPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected assigned id")
	}
	if p.Status != StatusActive {
		t.Errorf("expected status %q, got %q", StatusActive, p.Status)
	}
}

func TestHandler_CreatePlan_MissingTitle(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, _ := request(t, http.MethodPost, "/api/v1/plans", `{"patient_id":1}`)
	if code := statusOf(t, h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestHandler_GetPlan_NotFound(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, _ := request(t, http.MethodGet, "/api/v1/plans/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	if code := statusOf(t, h.Get(c)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestHandler_ListByPatient(t *testing.T) {
	h, svc := newHandlerFixture(t)
	mustCreatePlan(t, svc, 7, "A")
	mustCreatePlan(t, svc, 7, "B")
	mustCreatePlan(t, svc, 8, "C")

	c, rec := request(t, http.MethodGet, "/api/v1/plans/patient/7?order=desc", "")
	c.SetParamNames("patient_id")
	c.SetParamValues("7")

	if err := h.ListByPatient(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var resp struct {
		Data  []*TreatmentPlan `json:"data"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 2 || len(resp.Data) != 2 {
		t.Fatalf("expected 2 plans, got total=%d len=%d", resp.Total, len(resp.Data))
	}
	if resp.Data[0].ID < resp.Data[1].ID {
		t.Error("expected descending order")
	}
}

func TestHandler_CreateLog(t *testing.T) {
	h, svc := newHandlerFixture(t)
	p := mustCreatePlan(t, svc, 1, "Fluency")

	c, rec := request(t, http.MethodPost, "/api/v1/plans/"+strconv.FormatInt(p.ID, 10)+"/logs",
		`{"progress":{"0":0.5},"notes":"good session"}`)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(p.ID, 10))

	if err := h.CreateLog(c); err != nil {
		t.Fatalf("create log: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var l SessionLog
	if err := json.Unmarshal(rec.Body.Bytes(), &l); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if l.PlanID != p.ID {
		t.Errorf("expected plan id %d, got %d", p.ID, l.PlanID)
	}
	if l.Notes == nil || *l.Notes != "good session" {
		t.Errorf("unexpected notes: %v", l.Notes)
	}
}

func TestHandler_CreateLog_MissingPlan(t *testing.T) {
	h, _ := newHandlerFixture(t)

	c, _ := request(t, http.MethodPost, "/api/v1/plans/42/logs", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("42")

	if code := statusOf(t, h.CreateLog(c)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestHandler_ListLogs(t *testing.T) {
	h, svc := newHandlerFixture(t)
	p := mustCreatePlan(t, svc, 1, "Fluency")
	if _, err := svc.CreateLog(context.Background(), p.ID, &LogInput{}); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	c, rec := request(t, http.MethodGet, "/api/v1/plans/"+strconv.FormatInt(p.ID, 10)+"/logs", "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(p.ID, 10))

	if err := h.ListLogs(c); err != nil {
		t.Fatalf("list logs: %v", err)
	}

	var resp struct {
		Data  []*SessionLog `json:"data"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("expected 1 log, got total=%d len=%d", resp.Total, len(resp.Data))
	}
}
