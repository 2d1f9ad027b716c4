package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/apperrors"
)

func TestLogin_WrongPasswordRejected(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "admin", "password": "not the password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_CorrectPasswordIssuesToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "admin", "password": "correct horse battery staple",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.NotEmpty(t, body["token"])
}

func TestProtectedRoute_RejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUser_NonAdminForbidden(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/users", ts.adminTok, map[string]any{
		"username": "bob", "password": "bobs-password-123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "bob", "password": "bobs-password-123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	bobTok := decode[map[string]any](t, rec)["token"].(string)

	rec = ts.do(t, http.MethodPost, "/users", bobTok, map[string]any{
		"username": "carol", "password": "whatever-password",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	appErr := decode[map[string]any](t, rec)
	assert.Equal(t, string(apperrors.CategoryForbidden), appErr["category"])
}
