package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medconsult/medconsult/internal/platform/auth"
	"github.com/medconsult/medconsult/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := api.Group("/appointments", auth.RequireRole("patient"))
	patient.POST("", h.Book)
	patient.GET("", h.ListMine)
	patient.GET("/:id", h.Get)
	patient.POST("/:id/cancel", h.Cancel)

	doctor := api.Group("/doctor/appointments", auth.RequireRole("doctor"))
	doctor.GET("", h.ListAssigned)
	doctor.PUT("/:id/outcome", h.RecordOutcome)
}

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Slot     string    `json:"slot"`
	Symptoms string    `json:"symptoms"`
	IsUrgent bool      `json:"is_urgent"`
}

type appointmentResponse struct {
	*DoctorConsultation
	Slot string `json:"slot"`
}

func toResponse(d *DoctorConsultation) appointmentResponse {
	return appointmentResponse{DoctorConsultation: d, Slot: d.Slot()}
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}

	ctx := c.Request().Context()
	d, err := h.svc.Book(ctx, auth.UserIDFromContext(ctx), BookInput{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Slot:     req.Slot,
		Symptoms: req.Symptoms,
		IsUrgent: req.IsUrgent,
	})
	if errors.Is(err, ErrDoctorNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, ErrInvalidSlot) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toResponse(d))
}

func (h *Handler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	params := pagination.FromContext(c)

	items, err := h.svc.ListByPatient(ctx, auth.UserIDFromContext(ctx), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]appointmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toResponse(d))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"appointments": out})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	ctx := c.Request().Context()
	d, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toResponse(d))
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	ctx := c.Request().Context()
	d, err := h.svc.Cancel(ctx, auth.UserIDFromContext(ctx), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if errors.Is(err, ErrNotCancelable) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toResponse(d))
}

func (h *Handler) ListAssigned(c echo.Context) error {
	ctx := c.Request().Context()
	params := pagination.FromContext(c)

	items, err := h.svc.ListForDoctorUser(ctx, auth.UserIDFromContext(ctx), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]appointmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toResponse(d))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"appointments": out})
}

type outcomeRequest struct {
	Diagnosis string `json:"diagnosis"`
}

func (h *Handler) RecordOutcome(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req outcomeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Diagnosis == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "diagnosis is required")
	}

	ctx := c.Request().Context()
	d, err := h.svc.RecordOutcome(ctx, auth.UserIDFromContext(ctx), id, req.Diagnosis)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toResponse(d))
}
