// Package internalapi serves operator endpoints. It is bound to the internal
// port and never exposed to callers.
package internalapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/service"
)

// Handler handles operator HTTP requests.
type Handler struct {
	service  *service.Service
	gatherer prometheus.Gatherer
}

// NewHandler creates a new internal API handler.
func NewHandler(service *service.Service, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		service:  service,
		gatherer: gatherer,
	}
}

// RegisterRoutes registers internal routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Expiry
	e.POST("/internal/sweep", h.Sweep)

	// Rate limiter
	e.GET("/internal/ratelimit", h.RateLimit)

	// Request counters
	e.GET("/internal/counters/:user_id", h.GetCounter)
	e.PUT("/internal/counters/:user_id", h.SetPlan)

	if h.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
}

// Sweep runs one expiry pass immediately.
// POST /internal/sweep
func (h *Handler) Sweep(c echo.Context) error {
	result, err := h.service.Sweep(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "sweep_failed", Message: err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// RateLimit reports the process-wide limiter state.
// GET /internal/ratelimit
func (h *Handler) RateLimit(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.RateLimit())
}

// GetCounter returns a user's request counter.
// GET /internal/counters/:user_id
func (h *Handler) GetCounter(c echo.Context) error {
	counter, err := h.service.GetRequestCounter(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
	return c.JSON(http.StatusOK, counter)
}

// PlanRequest is the body of PUT /internal/counters/:user_id.
type PlanRequest struct {
	Tier          domain.Tier `json:"tier" validate:"required"`
	RequestsLimit int64       `json:"requests_limit" validate:"gte=0"`
}

// SetPlan changes a user's tier and limit.
// PUT /internal/counters/:user_id
func (h *Handler) SetPlan(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid_request", Message: err.Error()})
	}

	ctx := c.Request().Context()
	userID := c.Param("user_id")
	if err := h.service.SetRequestPlan(ctx, userID, req.Tier, req.RequestsLimit); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, domain.ErrorResponse{Error: "plan_update_failed", Message: err.Error()})
	}

	counter, err := h.service.GetRequestCounter(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
	return c.JSON(http.StatusOK, counter)
}
