package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 11, cfg.BcryptCost)
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\nllm_endpoint_url: http://llm.internal\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://llm.internal", cfg.LLMEndpointURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\n"), 0o600))

	t.Setenv("NETOPS_PORT", "7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestValidate_RejectsEmptyStorageRoot(t *testing.T) {
	cfg := Default()
	cfg.StorageRoot = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadBcryptCost(t *testing.T) {
	cfg := Default()
	cfg.BcryptCost = 2
	assert.Error(t, cfg.Validate())
}
