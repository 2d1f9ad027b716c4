package middleware

import (
	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/pkg/idgen"
)

// RequestIDHeader is the correlation-id header echoed back to clients
// and attached to every log line and error body for one request.
const RequestIDHeader = "X-Request-ID"

// RequestID returns an echo middleware that extracts an existing
// X-Request-ID header or mints a fresh ULID, then carries it through the
// request context so apperrors.Present and the structured loggers can
// tag every log line and error body with it.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(RequestIDHeader)
			if id == "" {
				id = idgen.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, id)

			ctx := apperrors.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ProductionMode returns an echo middleware that records whether
// detailed internal error messages should be hidden from clients.
func ProductionMode(production bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := apperrors.WithProductionMode(c.Request().Context(), production)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
