package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// AttachContext stores a typed fragment on a session. An unknown or expired
// session is replaced and the new id is returned.
// POST /v1/sessions/:session_id/contexts
func (h *Handler) AttachContext(c echo.Context) error {
	var req domain.AttachContextRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	payload, err := domain.DecodePayload(req.Type, req.Payload)
	if err != nil {
		return writeError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
	}

	in := domain.ContextInput{
		Type:    req.Type,
		Payload: payload,
		Metadata: domain.ContextMetadata{
			Tags:  req.Tags,
			Extra: req.Metadata,
		},
	}
	if req.Relevance != nil {
		in.Relevance = *req.Relevance
	}

	identity := identityFrom(c)
	resp, err := h.service.AttachContext(c.Request().Context(), identity.UserID, c.Param("session_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// AttachCode stores a code snippet on a session.
// POST /v1/sessions/:session_id/contexts/code
func (h *Handler) AttachCode(c echo.Context) error {
	var req domain.AttachCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	identity := identityFrom(c)
	resp, err := h.service.AddCodeContext(c.Request().Context(), identity.UserID, c.Param("session_id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// AttachProject stores project details on a session.
// POST /v1/sessions/:session_id/contexts/project
func (h *Handler) AttachProject(c echo.Context) error {
	var req domain.AttachProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	identity := identityFrom(c)
	resp, err := h.service.AddProjectContext(c.Request().Context(), identity.UserID, c.Param("session_id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetContexts lists live fragments, most relevant first.
// GET /v1/sessions/:session_id/contexts?type=
func (h *Handler) GetContexts(c echo.Context) error {
	sessionID := c.Param("session_id")
	identity := identityFrom(c)

	contexts, err := h.service.RetrieveContexts(c.Request().Context(), identity.UserID, sessionID, domain.ContextType(c.QueryParam("type")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"contexts":   contexts,
	})
}
