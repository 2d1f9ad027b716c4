package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/auth"
	"netopscore/internal/domain"
)

func newTestSecret(t *testing.T) []byte {
	t.Helper()
	secret, err := auth.GenerateSecret()
	require.NoError(t, err)
	return secret
}

func TestNewJWTService_RejectsEmptySecret(t *testing.T) {
	_, err := auth.NewJWTService(auth.JWTConfig{})
	assert.Error(t, err)
}

func TestNewJWTService_FillsDefaults(t *testing.T) {
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: newTestSecret(t)})
	require.NoError(t, err)

	tok, _, err := svc.Issue(domain.User{Username: "alice"})
	require.NoError(t, err)
	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "netopscore", claims.Issuer)
}

func TestJWTService_IssueAndVerifyRoundTrip(t *testing.T) {
	cfg := auth.DefaultJWTConfig()
	cfg.Secret = newTestSecret(t)
	svc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	user := domain.User{Username: "bob", IsPlatformAdmin: true}
	tok, expiresAt, err := svc.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.TokenTTL), expiresAt, time.Second)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Username)
	assert.True(t, claims.IsPlatformAdmin)
}

func TestJWTService_VerifyRejectsExpiredToken(t *testing.T) {
	cfg := auth.JWTConfig{Secret: newTestSecret(t), TokenTTL: -time.Hour}
	svc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	tok, _, err := svc.Issue(domain.User{Username: "carol"})
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWTService_VerifyRejectsWrongSecret(t *testing.T) {
	svcA, err := auth.NewJWTService(auth.JWTConfig{Secret: newTestSecret(t)})
	require.NoError(t, err)
	svcB, err := auth.NewJWTService(auth.JWTConfig{Secret: newTestSecret(t)})
	require.NoError(t, err)

	tok, _, err := svcA.Issue(domain.User{Username: "dave"})
	require.NoError(t, err)

	_, err = svcB.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestJWTService_VerifyRejectsGarbage(t *testing.T) {
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: newTestSecret(t)})
	require.NoError(t, err)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
