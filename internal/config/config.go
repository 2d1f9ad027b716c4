// Package config loads netopscore's deployment configuration. The only
// truly environment-sensitive inputs are an LLM endpoint URL, a storage
// root path, and a database connection string; everything else here is
// operational (port, auth, logging) and defaults sanely so a bare
// `netopscore` invocation still starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs netopscore reads at startup.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `yaml:"port"`

	// LLMEndpointURL is the black-box analysis adapter endpoint.
	LLMEndpointURL string `yaml:"llm_endpoint_url"`
	// LLMAdapterTimeout bounds a single analysis job (5 minutes is a
	// reasonable default).
	LLMAdapterTimeout time.Duration `yaml:"llm_adapter_timeout"`

	// StorageRoot is the filesystem directory backing the blob store.
	StorageRoot string `yaml:"storage_root"`

	// DatabaseDSN is the sqlite DSN for the system database.
	DatabaseDSN string `yaml:"database_dsn"`

	// JWTSigningKeyPath names a file whose raw bytes are used as the
	// HS256 secret that signs bearer tokens. If empty or unreadable, an
	// ephemeral secret is generated for the process lifetime (fine for
	// tests, not for multi-instance prod).
	JWTSigningKeyPath string `yaml:"jwt_signing_key_path"`
	// BcryptCost controls password hashing work factor.
	BcryptCost int `yaml:"bcrypt_cost"`

	// MaxDeviceImageBytes caps device/topology image uploads (~1.5MB by default).
	MaxDeviceImageBytes int64 `yaml:"max_device_image_bytes"`

	// Development switches both loggers to human-readable console output
	// and lets internal error details through to clients. No CORS
	// middleware is installed in either mode.
	Development bool   `yaml:"development"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the baseline configuration before any file/env overlay.
func Default() Config {
	return Config{
		Port:                "8080",
		LLMAdapterTimeout:   5 * time.Minute,
		StorageRoot:         "./data/blobs",
		DatabaseDSN:         "file:./data/netopscore.db?_time_format=sqlite&_pragma=journal_mode(WAL)",
		BcryptCost:          11,
		MaxDeviceImageBytes: 1_500_000,
		Development:         false,
		LogLevel:            "info",
	}
}

// Load builds a Config starting from Default(), overlaying an optional
// YAML file at path (skipped silently if path is empty or missing), and
// finally overlaying environment variables (which always win).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	overlayEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func overlayEnv(cfg *Config) {
	if v := os.Getenv("NETOPS_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("NETOPS_LLM_ENDPOINT_URL"); v != "" {
		cfg.LLMEndpointURL = v
	}
	if v := os.Getenv("NETOPS_LLM_ADAPTER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLMAdapterTimeout = d
		}
	}
	if v := os.Getenv("NETOPS_STORAGE_ROOT"); v != "" {
		cfg.StorageRoot = v
	}
	if v := os.Getenv("NETOPS_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("NETOPS_JWT_SIGNING_KEY_PATH"); v != "" {
		cfg.JWTSigningKeyPath = v
	}
	if v := os.Getenv("NETOPS_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		}
	}
	if v := os.Getenv("NETOPS_DEVELOPMENT"); v != "" {
		cfg.Development = v == "true" || v == "1"
	}
	if v := os.Getenv("NETOPS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate rejects configuration combinations the rest of the system
// cannot reasonably run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if c.StorageRoot == "" {
		return fmt.Errorf("config: storage_root must not be empty")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("config: database_dsn must not be empty")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("config: bcrypt_cost %d out of range [4,31]", c.BcryptCost)
	}
	if c.LLMAdapterTimeout <= 0 {
		return fmt.Errorf("config: llm_adapter_timeout must be positive")
	}
	return nil
}
