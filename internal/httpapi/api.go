package httpapi

import (
	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	custommw "netopscore/internal/middleware"
)

// api holds the Deps every handler method closes over.
type api struct {
	d Deps
}

// currentUser extracts the authenticated caller, erroring if the auth
// middleware somehow didn't run (should be unreachable on any
// registered route since Auth is in the global chain).
func currentUser(c echo.Context) (custommw.AuthUser, error) {
	u, ok := custommw.UserFromContext(c.Request().Context())
	if !ok {
		return custommw.AuthUser{}, apperrors.Unauthenticated("missing authenticated user")
	}
	return u, nil
}

// bind decodes the request body into dst, wrapping decode failures as a
// validation error so they surface with a 400 rather than echo's
// generic 400 shape.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.Validation("MALFORMED_BODY", "request body could not be parsed: "+err.Error())
	}
	return nil
}
