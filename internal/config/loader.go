package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and
// environment variables. If configFile is empty, it searches for
// moim.yaml/.yml in standard locations. The search requires an explicit
// YAML extension so a binary named "moim" in the current directory is
// never matched.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("moim")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: MOIM_SERVER_BASE_URL
	viper.SetEnvPrefix("MOIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a moim config file with
// an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".moim"),
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "moim"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable
// support. Example: MOIM_SERVER_BASE_URL overrides server.base_url
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.base_url")
	_ = viper.BindEnv("server.timeout")
	_ = viper.BindEnv("server.log_level")

	_ = viper.BindEnv("storage.secrets_path")
	_ = viper.BindEnv("storage.prefs_path")

	_ = viper.BindEnv("providers.google.enabled")
	_ = viper.BindEnv("providers.google.client_id")
	_ = viper.BindEnv("providers.apple.enabled")
	_ = viper.BindEnv("providers.apple.client_id")
	_ = viper.BindEnv("providers.kakao.enabled")
	_ = viper.BindEnv("providers.kakao.client_id")
}

// LoadConfig reads the configuration file, applies environment
// overrides, sets defaults, validates, and returns the Config.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or an empty string in env-vars-only mode.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
