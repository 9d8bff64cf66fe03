package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// Identity headers set by the authenticating proxy in front of governor.
const (
	HeaderUserID     = "X-User-ID"
	HeaderOrgID      = "X-Org-ID"
	HeaderPrivileged = "X-Privileged"
)

const identityKey = "identity"

// RequireIdentity reads the caller identity from trusted headers. Requests
// without a user id are rejected.
func RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		userID := strings.TrimSpace(req.Header.Get(HeaderUserID))
		if userID == "" {
			return c.JSON(http.StatusUnauthorized, domain.ErrorResponse{
				Error:   "unauthenticated",
				Message: "missing " + HeaderUserID + " header",
			})
		}
		privileged, _ := strconv.ParseBool(req.Header.Get(HeaderPrivileged))
		c.Set(identityKey, domain.Identity{
			UserID:     userID,
			OrgID:      strings.TrimSpace(req.Header.Get(HeaderOrgID)),
			Privileged: privileged,
		})
		return next(c)
	}
}

func identityFrom(c echo.Context) domain.Identity {
	id, _ := c.Get(identityKey).(domain.Identity)
	return id
}
