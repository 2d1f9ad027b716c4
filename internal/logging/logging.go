// Package logging provides the two structured loggers used across
// netopscore: a zerolog logger for the HTTP and storage hot paths, and a
// zap sugared logger for the analysis job controller and background
// workers. zerolog covers storage and HTTP, zap covers the rest, rather
// than forcing one library to cover every concern.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls both loggers' verbosity and output format.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Development enables human-readable console output instead of JSON.
	Development bool
}

// DefaultConfig returns production defaults: info level, JSON output.
func DefaultConfig() Config {
	return Config{Level: "info", Development: false}
}

// NewRequestLogger builds the zerolog logger used for HTTP request
// logging and storage operations.
func NewRequestLogger(cfg Config) zerolog.Logger {
	level := parseZerologLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	if cfg.Development {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(writer).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func parseZerologLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewWorkerLogger builds the zap sugared logger used by the analysis job
// controller and other background workers.
func NewWorkerLogger(cfg Config) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseZapLevel(cfg.Level))

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func parseZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
