// Package v1 serves the caller-facing /v1 API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/governor/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v1", RequireIdentity)

	g.POST("/chat", h.Chat)

	g.GET("/sessions/stats", h.GetSessionStats)
	g.GET("/sessions/:session_id/messages", h.GetSessionMessages)
	g.GET("/sessions/:session_id/contexts", h.GetContexts)
	g.POST("/sessions/:session_id/contexts", h.AttachContext)
	g.POST("/sessions/:session_id/contexts/code", h.AttachCode)
	g.POST("/sessions/:session_id/contexts/project", h.AttachProject)

	g.GET("/usage", h.GetUsage)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
