package plan

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fonoapp/suite/internal/platform/auth"
	"github.com/fonoapp/suite/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/plans")
	// Reads are open to any authenticated user so patients can follow
	// their own plans.
	g.GET("/patient/:patient_id", h.ListByPatient)
	g.GET("/:id", h.Get)
	g.GET("/:id/logs", h.ListLogs)

	w := api.Group("/plans", auth.RequireRole(auth.RoleTherapist))
	w.POST("", h.Create)
	w.PUT("/:id", h.Update)
	w.DELETE("/:id", h.Delete)

	logs := api.Group("/plans", auth.RequireRole(auth.RoleTherapist, auth.RoleAssistant))
	logs.POST("/:id/logs", h.CreateLog)
}

func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrPlanNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "treatment plan not found")
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func listParams(c echo.Context) ListParams {
	page := pagination.FromContext(c)
	return ListParams{
		Order:  c.QueryParam("order"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}

func (h *Handler) Create(c echo.Context) error {
	var in PlanInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePlan(c.Request().Context(), &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in PlanInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePlan(c.Request().Context(), id, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePlan(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := pathID(c, "patient_id")
	if err != nil {
		return err
	}
	params := listParams(c)
	plans, total, err := h.svc.ListPlans(c.Request().Context(), patientID, params)
	if err != nil {
		return httpError(err)
	}
	if plans == nil {
		plans = []*TreatmentPlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(plans, total, params.Limit, params.Offset))
}

func (h *Handler) CreateLog(c echo.Context) error {
	planID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in LogInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l, err := h.svc.CreateLog(c.Request().Context(), planID, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) ListLogs(c echo.Context) error {
	planID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	params := listParams(c)
	logs, total, err := h.svc.ListLogs(c.Request().Context(), planID, params)
	if err != nil {
		return httpError(err)
	}
	if logs == nil {
		logs = []*SessionLog{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(logs, total, params.Limit, params.Offset))
}
