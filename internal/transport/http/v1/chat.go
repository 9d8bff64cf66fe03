package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// Chat runs one conversational turn.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req domain.ChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	result, err := h.service.Chat(c.Request().Context(), identityFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
