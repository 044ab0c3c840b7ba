package consultation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medconsult/medconsult/internal/platform/auth"
	"github.com/medconsult/medconsult/internal/platform/llm"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	chat := api.Group("/chat", auth.RequireRole("patient"))
	chat.GET("/history", h.GetHistory)
	chat.POST("/ask", h.Ask)
	chat.POST("/sessions", h.StartSession)
}

// GetHistory returns paired chat history. Without a consultation_id the
// patient's active session is resolved (created if absent) and its history
// returned; with ?all=true the full multi-consultation history is returned
// with separators.
func (h *Handler) GetHistory(c echo.Context) error {
	ctx := c.Request().Context()
	patientID := auth.UserIDFromContext(ctx)

	if c.QueryParam("all") == "true" {
		history, err := h.svc.PairedHistory(ctx, patientID, nil)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"history": history})
	}

	var target *Consultation
	if raw := c.QueryParam("consultation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid consultation_id")
		}
		target = &Consultation{ID: id}
	} else {
		active, err := h.svc.ResolveActive(ctx, patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		target = active
	}

	history, err := h.svc.PairedHistory(ctx, patientID, &target.ID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"consultation_id": target.ID,
		"history":         history,
	})
}

type askRequest struct {
	ConsultationID *uuid.UUID `json:"consultation_id"`
	Question       string     `json:"question"`
}

// Ask answers one patient question and appends the exchange to the target
// consultation (the active session when none is given).
func (h *Handler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	ctx := c.Request().Context()
	patientID := auth.UserIDFromContext(ctx)

	consultationID := uuid.Nil
	if req.ConsultationID != nil {
		consultationID = *req.ConsultationID
	} else {
		active, err := h.svc.ResolveActive(ctx, patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		consultationID = active.ID
	}

	answer, _, err := h.svc.Ask(ctx, patientID, consultationID, req.Question)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	}
	if errors.Is(err, llm.ErrUnavailable) {
		return echo.NewHTTPError(http.StatusBadGateway, "assistant is unavailable, please retry later")
	}
	if errors.Is(err, llm.ErrMalformed) {
		return echo.NewHTTPError(http.StatusBadGateway, "assistant returned an unusable response")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// StartSession creates a fresh consultation, which becomes the active
// session for all subsequent chat requests.
func (h *Handler) StartSession(c echo.Context) error {
	ctx := c.Request().Context()

	created, err := h.svc.StartNew(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"session_id": created.ID,
	})
}
