package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
	"netopscore/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// login implements POST /login: verify credentials, issue a bearer
// token.
func (h *api) login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := store.GetUser(c.Request().Context(), h.d.DB, req.Username)
	if err != nil {
		return apperrors.Unauthenticated("invalid username or password")
	}
	if verr := h.d.Passwords.Verify(user.PasswordHash, req.Password); verr != nil {
		return apperrors.Unauthenticated("invalid username or password")
	}

	token, expiresAt, err := h.d.JWT.Issue(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// changePassword implements POST /change-password: requires the
// caller's current password.
func (h *api) changePassword(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := store.GetUser(c.Request().Context(), h.d.DB, caller.Username)
	if err != nil {
		return err
	}
	if verr := h.d.Passwords.Verify(user.PasswordHash, req.CurrentPassword); verr != nil {
		return apperrors.Unauthenticated("current password is incorrect")
	}

	hash, herr := h.d.Passwords.Hash(req.NewPassword)
	if herr != nil {
		return apperrors.Validation("WEAK_PASSWORD", herr.Error())
	}
	if err := store.UpdateUserPassword(c.Request().Context(), h.d.DB, caller.Username, hash); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// listUsers implements GET /users (platform-admin only).
func (h *api) listUsers(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	if !caller.IsPlatformAdmin {
		return apperrors.Forbidden("only a platform admin may list users")
	}
	users, err := store.ListUsers(c.Request().Context(), h.d.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
}

// createUser implements POST /users (platform-admin only).
func (h *api) createUser(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	if !caller.IsPlatformAdmin {
		return apperrors.Forbidden("only a platform admin may create users")
	}

	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Username == "" {
		return apperrors.Validation("EMPTY_USERNAME", "username must not be empty")
	}
	hash, herr := h.d.Passwords.Hash(req.Password)
	if herr != nil {
		return apperrors.Validation("WEAK_PASSWORD", herr.Error())
	}

	user := domain.User{Username: req.Username, PasswordHash: hash, IsPlatformAdmin: req.IsPlatformAdmin, CreatedAt: time.Now().UTC()}
	if err := store.CreateUser(c.Request().Context(), h.d.DB, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// getUser implements GET /users/{username} (platform admin, or the user
// reading their own record).
func (h *api) getUser(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	if !caller.IsPlatformAdmin && caller.Username != c.Param("username") {
		return apperrors.Forbidden("only a platform admin may view other users")
	}
	user, err := store.GetUser(c.Request().Context(), h.d.DB, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// deleteUser implements DELETE /users/{username} (platform-admin only).
func (h *api) deleteUser(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	if !caller.IsPlatformAdmin {
		return apperrors.Forbidden("only a platform admin may delete users")
	}
	if err := store.DeleteUser(c.Request().Context(), h.d.DB, c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
