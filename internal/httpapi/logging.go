package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	custommw "netopscore/internal/middleware"
)

// requestLogger builds the zerolog-backed access-log middleware for the
// HTTP hot path, emitting one structured event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)

			evt := log.Info()
			if err != nil {
				evt = log.Error().Err(err)
			}
			evt.Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(started)).
				Str("request_id", c.Response().Header().Get(custommw.RequestIDHeader)).
				Msg("http_request")
			return err
		}
	}
}
