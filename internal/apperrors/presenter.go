package apperrors

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	requestIDKey     contextKey = "apperrors_request_id"
	productionModeKey contextKey = "apperrors_production_mode"
)

// WithRequestID attaches a request id to ctx for later inclusion in
// presented error bodies and log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id attached to ctx, or "" if none.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithProductionMode records whether detailed error internals should be
// hidden from the client.
func WithProductionMode(ctx context.Context, prod bool) context.Context {
	return context.WithValue(ctx, productionModeKey, prod)
}

// IsProductionMode reports the production-mode flag for ctx (default false).
func IsProductionMode(ctx context.Context) bool {
	prod, _ := ctx.Value(productionModeKey).(bool)
	return prod
}

// Body is the JSON shape returned to HTTP clients for any error.
type Body struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
	RequestID   string `json:"request_id,omitempty"`
}

// Present converts err into an HTTP status and response body. Unknown
// error types are folded into a generic internal error so a stray
// fmt.Errorf never leaks raw Go error text to a client in production
// mode.
func Present(ctx context.Context, err error) (int, Body) {
	requestID := GetRequestID(ctx)

	appErr, ok := As(err)
	if !ok {
		appErr = Internal("an internal error occurred")
		if !IsProductionMode(ctx) {
			appErr.Message = err.Error()
		}
	}

	message := appErr.Message
	if IsProductionMode(ctx) && appErr.Category == CategoryInternal {
		message = "an internal error occurred"
	}

	return appErr.Status(), Body{
		Code:        appErr.Code,
		Category:    string(appErr.Category),
		Message:     message,
		Recoverable: appErr.Recoverable,
		RequestID:   requestID,
	}
}

// HTTPErrorHandler is an echo.HTTPErrorHandler wired through Present so
// every handler error path returns the same typed JSON body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	ctx := c.Request().Context()

	var herr *echo.HTTPError
	if eerr, ok := err.(*echo.HTTPError); ok {
		herr = eerr
	}
	if herr != nil && herr.Code == http.StatusNotFound {
		status, body := Present(ctx, NotFound("route", c.Request().URL.Path))
		_ = c.JSON(status, body)
		return
	}

	status, body := Present(ctx, err)
	if werr := c.JSON(status, body); werr != nil {
		c.Logger().Error(werr)
	}
}
