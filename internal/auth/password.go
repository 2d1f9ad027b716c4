package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password policy errors.
var (
	ErrPasswordTooShort = errors.New("auth: password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("auth: password must not exceed 128 characters")
	ErrPasswordMismatch = errors.New("auth: current password is incorrect")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// PasswordService hashes and verifies member login passwords.
type PasswordService struct {
	cost int
}

// NewPasswordService builds a PasswordService at the given bcrypt cost
// (internal/config validates this is within bcrypt's [4,31] range).
func NewPasswordService(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// ValidatePolicy rejects passwords outside the length bounds NIST SP
// 800-63B recommends (8-128 characters, no forced complexity rules).
func ValidatePolicy(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// Hash bcrypt-hashes a validated password.
func (s *PasswordService) Hash(password string) (string, error) {
	if err := ValidatePolicy(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
func (s *PasswordService) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
