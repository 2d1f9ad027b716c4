// Package middleware provides the echo middleware chain netopscore's
// HTTP surface runs every request through: bearer-token authentication,
// request-id propagation, and login rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/internal/auth"
	"netopscore/internal/domain"
)

type contextKey string

const userContextKey contextKey = "netopscore_auth_user"

// AuthUser is the authenticated identity attached to a request context.
type AuthUser struct {
	Username        string
	IsPlatformAdmin bool
}

// WithUser attaches an authenticated user to ctx.
func WithUser(ctx context.Context, u AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (AuthUser, bool) {
	u, ok := ctx.Value(userContextKey).(AuthUser)
	return u, ok
}

// publicPaths never require a bearer token.
var publicPaths = map[string]bool{
	"/health": true,
	"/login":  true,
}

// Auth returns an echo middleware that verifies the bearer token on
// every request except publicPaths, attaching the resolved user to the
// request context for downstream handlers and role checks.
func Auth(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if publicPaths[c.Path()] {
				return next(c)
			}

			token := extractBearerToken(c.Request())
			if token == "" {
				return apperrors.Unauthenticated("missing bearer token")
			}

			claims, err := jwtService.Verify(token)
			if err != nil {
				return apperrors.Unauthenticated("invalid or expired token")
			}

			ctx := WithUser(c.Request().Context(), AuthUser{
				Username:        claims.Username,
				IsPlatformAdmin: claims.IsPlatformAdmin,
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// RequireRole returns an echo middleware that resolves the caller's
// membership role for the :pid path parameter and rejects the request
// with 403 unless roleCheck passes. Platform admins bypass the check —
// they are not necessarily project members but administer the whole
// deployment, distinct from per-project "admin" membership.
func RequireRole(getRole func(ctx context.Context, projectID, username string) (domain.Role, error), roleCheck func(domain.Role) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c.Request().Context())
			if !ok {
				return apperrors.Unauthenticated("missing authenticated user")
			}
			if user.IsPlatformAdmin {
				return next(c)
			}

			projectID := c.Param("pid")
			role, err := getRole(c.Request().Context(), projectID, user.Username)
			if err != nil {
				return err
			}
			if !roleCheck(role) {
				return apperrors.Forbidden("role does not permit this operation")
			}
			return next(c)
		}
	}
}
