package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetSessionMessages returns the latest messages of a session, oldest first.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	identity := identityFrom(c)
	messages, err := h.service.GetMessages(c.Request().Context(), identity.UserID, sessionID, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// GetSessionStats summarizes the caller's live sessions.
// GET /v1/sessions/stats
func (h *Handler) GetSessionStats(c echo.Context) error {
	identity := identityFrom(c)
	stats, err := h.service.SessionStats(c.Request().Context(), identity.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
