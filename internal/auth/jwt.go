// Package auth issues and verifies the bearer tokens netopscore's HTTP
// surface uses for authentication, and hashes member passwords. Tokens
// are HS256 JWTs signed with a server-held secret: a single trust
// domain with no third-party token verification needs no asymmetric
// key-pair scheme.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"netopscore/internal/domain"
)

// Errors returned by token verification.
var (
	ErrTokenInvalid = errors.New("auth: token is invalid")
	ErrTokenExpired = errors.New("auth: token has expired")
)

// Claims is the JWT payload netopscore issues.
type Claims struct {
	jwt.RegisteredClaims
	Username        string `json:"username"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
}

// JWTConfig controls token signing and lifetime.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration
}

// DefaultJWTConfig returns a one-hour token lifetime under the
// "netopscore" issuer.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{Issuer: "netopscore", TokenTTL: time.Hour}
}

// JWTService issues and verifies bearer tokens.
type JWTService struct {
	cfg JWTConfig
}

// NewJWTService builds a JWTService. An empty secret is rejected — the
// caller must either load one from JWTSigningKeyPath or generate an
// ephemeral one with GenerateSecret for single-process deployments.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: JWT secret must not be empty")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultJWTConfig().Issuer
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultJWTConfig().TokenTTL
	}
	return &JWTService{cfg: cfg}, nil
}

// GenerateSecret returns 32 bytes of cryptographically random key
// material, suitable for an ephemeral single-process secret.
func GenerateSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("auth: generate secret: %w", err)
	}
	return buf, nil
}

// LoadOrGenerateSecret reads the signing key from path if non-empty and
// the file exists, otherwise returns a fresh ephemeral secret (fine for
// single-instance/dev use, not for a multi-instance deployment where
// every instance must share one secret).
func LoadOrGenerateSecret(path string) ([]byte, error) {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return data, nil
		}
	}
	return GenerateSecret()
}

// Issue mints a signed token for a user.
func (s *JWTService) Issue(user domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Issuer:    s.cfg.Issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:        user.Username,
		IsPlatformAdmin: user.IsPlatformAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a bearer token string, returning its claims.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
