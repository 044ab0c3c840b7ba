package medrecord

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medconsult/medconsult/internal/platform/auth"
	"github.com/medconsult/medconsult/internal/platform/llm"
	"github.com/medconsult/medconsult/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medical-records", auth.RequireRole("patient"))
	g.POST("", h.Synthesize)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

func (h *Handler) Synthesize(c echo.Context) error {
	ctx := c.Request().Context()

	rec, err := h.svc.Synthesize(ctx, auth.UserIDFromContext(ctx))
	if errors.Is(err, ErrMissingProfile) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, llm.ErrUnavailable) {
		return echo.NewHTTPError(http.StatusBadGateway, "record service is unavailable, please retry later")
	}
	if errors.Is(err, llm.ErrMalformed) {
		return echo.NewHTTPError(http.StatusBadGateway, "record service returned an unusable response")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	params := pagination.FromContext(c)

	records, err := h.svc.List(ctx, auth.UserIDFromContext(ctx), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = []*MedicalRecord{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"records": records})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	ctx := c.Request().Context()
	rec, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}
