package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/auth"
)

func TestValidatePolicy_RejectsOutOfBoundLengths(t *testing.T) {
	assert.ErrorIs(t, auth.ValidatePolicy("short"), auth.ErrPasswordTooShort)
	assert.NoError(t, auth.ValidatePolicy("adequatepw"))

	over := make([]byte, 129)
	for i := range over {
		over[i] = 'a'
	}
	assert.ErrorIs(t, auth.ValidatePolicy(string(over)), auth.ErrPasswordTooLong)
}

func TestPasswordService_HashAndVerifyRoundTrip(t *testing.T) {
	svc := auth.NewPasswordService(4) // lowest valid bcrypt cost, keeps the test fast
	hash, err := svc.Hash("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.NoError(t, svc.Verify(hash, "correct-horse-battery"))
	assert.ErrorIs(t, svc.Verify(hash, "wrong-password"), auth.ErrPasswordMismatch)
}

func TestPasswordService_HashRejectsPolicyViolation(t *testing.T) {
	svc := auth.NewPasswordService(4)
	_, err := svc.Hash("short")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}
