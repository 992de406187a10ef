// Package config loads application configuration from an optional YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Refresh policy names accepted in configuration.
const (
	PolicyPreferCached   = "prefer-cached"
	PolicyRefetchCurrent = "refetch-current"
)

// Config holds application configuration.
type Config struct {
	// DBPath is the SQLite cache database file.
	DBPath string `yaml:"db_path"`

	// StateDir holds credential files and the device-id fallback.
	StateDir string `yaml:"state_dir"`

	// RefreshSchedule is the cron expression for background refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`

	// RefreshPolicy selects the billing merge policy: "prefer-cached"
	// never refetches a persisted month, "refetch-current" keeps the
	// running month up to date.
	RefreshPolicy string `yaml:"refresh_policy"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns the configuration used when no file and no environment
// overrides are present. Paths live under the user config directory.
func Default() *Config {
	base := ".gourmet-cache"
	if dir, err := os.UserConfigDir(); err == nil {
		base = filepath.Join(dir, "gourmet-cache")
	}
	return &Config{
		DBPath:          filepath.Join(base, "cache.db"),
		StateDir:        base,
		RefreshSchedule: "*/30 * * * *",
		RefreshPolicy:   PolicyRefetchCurrent,
		LogLevel:        "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order. A missing file is not an error; a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DBPath = getEnv("GOURMET_DB_PATH", cfg.DBPath)
	cfg.StateDir = getEnv("GOURMET_STATE_DIR", cfg.StateDir)
	cfg.RefreshSchedule = getEnv("GOURMET_REFRESH_SCHEDULE", cfg.RefreshSchedule)
	cfg.RefreshPolicy = getEnv("GOURMET_REFRESH_POLICY", cfg.RefreshPolicy)
	cfg.LogLevel = getEnv("GOURMET_LOG_LEVEL", cfg.LogLevel)
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	switch c.RefreshPolicy {
	case PolicyPreferCached, PolicyRefetchCurrent:
	default:
		return fmt.Errorf("refresh_policy must be %q or %q, got %q",
			PolicyPreferCached, PolicyRefetchCurrent, c.RefreshPolicy)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
