package assessment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fonoapp/suite/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Template authoring is for therapists; assistants only read and
	// record results.
	tw := api.Group("/assessments/templates", auth.RequireRole(auth.RoleTherapist))
	tw.POST("", h.CreateTemplate)
	tw.PUT("/:id", h.UpdateTemplate)

	tr := api.Group("/assessments/templates", auth.RequireRole(auth.RoleTherapist, auth.RoleAssistant))
	tr.GET("", h.ListTemplates)

	res := api.Group("/assessments/results", auth.RequireRole(auth.RoleTherapist, auth.RoleAssistant))
	res.POST("", h.CreateResult)
	res.GET("/patient/:patient_id", h.ListResultsByPatient)
}

func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "assessment template not found")
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

func (h *Handler) CreateTemplate(c echo.Context) error {
	var in TemplateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.CreateTemplate(c.Request().Context(), &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	templates, err := h.svc.ListTemplates(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if templates == nil {
		templates = []*Template{}
	}
	return c.JSON(http.StatusOK, templates)
}

func (h *Handler) UpdateTemplate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in TemplateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.UpdateTemplate(c.Request().Context(), id, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateResult(c echo.Context) error {
	var in ResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.CreateResult(c.Request().Context(), &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListResultsByPatient(c echo.Context) error {
	patientID, err := pathID(c, "patient_id")
	if err != nil {
		return err
	}
	results, err := h.svc.ListResultsByPatient(c.Request().Context(), patientID)
	if err != nil {
		return httpError(err)
	}
	if results == nil {
		results = []*Result{}
	}
	return c.JSON(http.StatusOK, results)
}
