package history

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medconsult/medconsult/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/history", auth.RequireRole("patient"))
	g.GET("/recent", h.Recent)
	g.GET("/records", h.Records)
}

// Recent returns the patient's single most recent record, AI or doctor,
// or a JSON null when there is none.
func (h *Handler) Recent(c echo.Context) error {
	ctx := c.Request().Context()

	record, err := h.svc.MostRecent(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if record == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) Records(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := h.svc.AllRecords(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"records": records})
}
