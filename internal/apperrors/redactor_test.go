package apperrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitiveKey(t *testing.T) {
	assert.True(t, IsSensitiveKey("Password"))
	assert.True(t, IsSensitiveKey("db_password"))
	assert.True(t, IsSensitiveKey("Authorization"))
	assert.True(t, IsSensitiveKey("apiKey"))
	assert.False(t, IsSensitiveKey("hostname"))
	assert.False(t, IsSensitiveKey("device_name"))
}

func TestRedactMap(t *testing.T) {
	in := map[string]any{
		"username": "alice",
		"password": "hunter2",
		"nested": map[string]any{
			"token": "abc123",
			"ok":    "fine",
		},
	}

	out := RedactMap(in)

	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, redactedPlaceholder, out["password"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, redactedPlaceholder, nested["token"])
	assert.Equal(t, "fine", nested["ok"])
}

func TestRedactMap_Nil(t *testing.T) {
	assert.Nil(t, RedactMap(nil))
}
