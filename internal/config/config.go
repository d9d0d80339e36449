// Package config provides configuration types and loading for the Moim
// client.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration for the Moim client.
type Config struct {
	// Server configures the Moim API endpoint.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage configures where credentials and preferences live.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Providers configures the sign-in providers.
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
}

// ServerConfig configures the API endpoint.
type ServerConfig struct {
	// BaseURL is the API origin (e.g., "https://api.moim.app").
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the per-request timeout (e.g., "10s").
	// Defaults to "10s" if empty.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "info" if empty.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// StorageConfig configures credential and preference persistence.
type StorageConfig struct {
	// SecretsPath is the path of the secure credential file.
	// Defaults to ~/.moim/secrets.json.
	SecretsPath string `yaml:"secrets_path" mapstructure:"secrets_path"`

	// PrefsPath is the path of the preference database.
	// Defaults to ~/.moim/prefs.db.
	PrefsPath string `yaml:"prefs_path" mapstructure:"prefs_path"`
}

// ProviderConfig configures one sign-in provider.
type ProviderConfig struct {
	// Enabled controls whether the provider is offered.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// ClientID is the provider-issued application identifier.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
}

// ProvidersConfig configures the supported sign-in providers.
type ProvidersConfig struct {
	Google ProviderConfig `yaml:"google" mapstructure:"google"`
	Apple  ProviderConfig `yaml:"apple" mapstructure:"apple"`
	Kakao  ProviderConfig `yaml:"kakao" mapstructure:"kakao"`
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Server.Timeout == "" {
		c.Server.Timeout = "10s"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	home, _ := os.UserHomeDir()
	if c.Storage.SecretsPath == "" {
		c.Storage.SecretsPath = filepath.Join(home, ".moim", "secrets.json")
	}
	if c.Storage.PrefsPath == "" {
		c.Storage.PrefsPath = filepath.Join(home, ".moim", "prefs.db")
	}
}

// RequestTimeout parses the configured timeout, falling back to 10s on
// an unparseable value.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
