package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// GetUsage returns aggregated usage for ?user_id= or ?org_id=. With neither,
// it reports on the caller.
// GET /v1/usage
func (h *Handler) GetUsage(c echo.Context) error {
	scope, id := domain.UsageScopeUser, c.QueryParam("user_id")
	if org := c.QueryParam("org_id"); org != "" {
		if id != "" {
			return writeError(c, fmt.Errorf("%w: user_id and org_id are mutually exclusive", domain.ErrInvalidInput))
		}
		scope, id = domain.UsageScopeOrg, org
	}
	if id == "" {
		id = identityFrom(c).UserID
	}

	summary, err := h.service.GetUsage(c.Request().Context(), scope, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
