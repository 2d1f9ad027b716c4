package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestLogger_Development(t *testing.T) {
	logger := NewRequestLogger(Config{Level: "debug", Development: true})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	logger.Info().Msg("ok")
}

func TestNewWorkerLogger(t *testing.T) {
	sugar, err := NewWorkerLogger(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, sugar)
	sugar.Infow("worker started", "component", "analysis")
}

func TestParseZerologLevel_Unknown(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseZerologLevel("nonsense"))
}
