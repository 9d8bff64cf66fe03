package v1

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
	"github.com/xiaot623/gogo/governor/internal/ratelimit"
)

// writeError maps service errors to status codes. Upstream detail is logged
// by the service and never echoed to the caller.
func writeError(c echo.Context, err error) error {
	var sessionID string
	var sessionErr *domain.SessionError
	if errors.As(err, &sessionErr) {
		sessionID = sessionErr.SessionID
	}

	var limited *ratelimit.LimitedError
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		if errors.As(err, &limited) {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
		}
		return c.JSON(http.StatusTooManyRequests, domain.ErrorResponse{
			Error:     "rate_limited",
			Message:   "Too many requests right now. Please wait a few minutes and try again.",
			SessionID: sessionID,
		})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, domain.ErrorResponse{
			Error:     "upstream_unavailable",
			Message:   "The AI service is temporarily unavailable. Please try again shortly.",
			SessionID: sessionID,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}
	logger.Error("Request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
		Error:   "internal_error",
		Message: "Something went wrong on our side. Please try again.",
	})
}

// bindAndValidate decodes the body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
