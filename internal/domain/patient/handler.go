package patient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	g := api.Group("/patients", auth.RequireRole(auth.RoleTherapist, auth.RoleAssistant))
	g.GET("", h.List)
	g.GET("/by-cedula/:doc", h.GetByCedula)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.SoftDelete)

	// Restore is not available to assistants.
	restore := api.Group("/patients", auth.RequireRole(auth.RoleTherapist))
	restore.POST("/:id/restore", h.Restore)

	// Hard delete is admin only.
	admin := api.Group("/patients", auth.RequireRole())
	admin.DELETE("/:id/hard", h.HardDelete)
}

func httpError(err error) error {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrCedulaConflict):
		return echo.NewHTTPError(http.StatusConflict, "cedula already registered")
	case errors.Is(err, ErrInvalidCedula):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cedula")
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

// includeDeleted honors the query flag for admins only.
func includeDeleted(c echo.Context) bool {
	return c.QueryParam("include_deleted") == "true" && auth.IsAdmin(c.Request().Context())
}

func dateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be YYYY-MM-DD")
	}
	t := d.Time
	return &t, nil
}

func (h *Handler) parseListParams(c echo.Context) (ListParams, error) {
	page := pagination.FromContext(c)
	params := ListParams{
		Query:          c.QueryParam("q"),
		Diagnosis:      c.QueryParam("diagnosis"),
		Cedula:         c.QueryParam("cedula"),
		Sort:           c.QueryParam("sort"),
		IncludeDeleted: includeDeleted(c),
		Limit:          page.Limit,
		Offset:         page.Offset,
	}

	var err error
	if params.BirthFrom, err = dateParam(c, "birth_from"); err != nil {
		return params, err
	}
	if params.BirthTo, err = dateParam(c, "birth_to"); err != nil {
		return params, err
	}
	if params.CreatedFrom, err = dateParam(c, "created_from"); err != nil {
		return params, err
	}
	if params.CreatedTo, err = dateParam(c, "created_to"); err != nil {
		return params, err
	}
	// created_to covers the whole day.
	if params.CreatedTo != nil {
		end := params.CreatedTo.Add(24*time.Hour - time.Nanosecond)
		params.CreatedTo = &end
	}
	return params, nil
}

func (h *Handler) List(c echo.Context) error {
	params, err := h.parseListParams(c)
	if err != nil {
		return err
	}

	patients, total, err := h.svc.List(c.Request().Context(), params)
	if err != nil {
		return httpError(err)
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, params.Limit, params.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Get(c.Request().Context(), id, includeDeleted(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetByCedula(c echo.Context) error {
	p, err := h.svc.GetByCedula(c.Request().Context(), c.Param("doc"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Create(c.Request().Context(), &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SoftDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.SoftDelete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Restore(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HardDelete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.HardDelete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
