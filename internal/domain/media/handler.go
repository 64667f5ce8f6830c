package media

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fonoapp/suite/internal/platform/auth"
	"github.com/fonoapp/suite/internal/platform/blobstore"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/files", auth.RequireRole(auth.RoleTherapist, auth.RoleAssistant))
	g.POST("/upload", h.Upload)
	g.GET("/patient/:patient_id", h.ListByPatient)
	g.GET("/:id/download", h.Download)

	del := api.Group("/files", auth.RequireRole(auth.RoleTherapist))
	del.DELETE("/:id", h.Delete)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, blobstore.ErrBlobNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "media file not found")
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large (>50MB)")
	case errors.Is(err, blobstore.ErrExtensionNotAllowed),
		errors.Is(err, blobstore.ErrMissingFileName),
		errors.Is(err, blobstore.ErrInvalidPath):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}

	var patientID *int64
	if raw := c.QueryParam("patient_id"); raw != "" {
		pid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pid <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		patientID = &pid
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	f, err := h.svc.Upload(c.Request().Context(), patientID, fh.Filename, src)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("patient_id"), 10, 64)
	if err != nil || patientID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	files, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return httpError(err)
	}
	if files == nil {
		files = []*File{}
	}
	return c.JSON(http.StatusOK, files)
}

func (h *Handler) Download(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file id")
	}

	f, rc, err := h.svc.Open(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, contentTypeFor(f.StoredName), rc)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
