// Package http provides the HTTP servers for governor.
package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xiaot623/gogo/governor/internal/service"
	"github.com/xiaot623/gogo/governor/internal/transport/http/internalapi"
	v1 "github.com/xiaot623/gogo/governor/internal/transport/http/v1"
)

// requestValidator adapts validator.v10 to echo.Validator.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// NewValidator returns the echo validator used by both servers.
func NewValidator() echo.Validator {
	return &requestValidator{validate: validator.New()}
}

// NewExternalServer creates the caller-facing server (/v1 and /health).
func NewExternalServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1Handler := v1.NewHandler(svc)
	v1Handler.RegisterRoutes(e)

	return e
}

// NewInternalServer creates the operator server (/internal, /metrics).
func NewInternalServer(svc *service.Service, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	internalHandler := internalapi.NewHandler(svc, gatherer)
	internalHandler.RegisterRoutes(e)

	return e
}
