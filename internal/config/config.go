// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/pewbar/internal/updates"
)

// Default configuration values.
const (
	DefaultPewTimeout      = 10  // seconds
	DefaultUpdatesInterval = 600 // seconds
)

// Config represents the pewbar configuration.
type Config struct {
	Pew     PewConfig     `toml:"pew"`
	Updates UpdatesConfig `toml:"updates"`
}

// PewConfig holds the notification module settings.
type PewConfig struct {
	Enabled  bool   `toml:"enabled"`
	Timeout  int    `toml:"timeout"`  // display window, seconds
	Template string `toml:"template"` // empty = built-in default
	Sound    string `toml:"sound"`    // optional sound file played on capture
}

// UpdatesConfig holds the update aggregator settings.
type UpdatesConfig struct {
	Enabled    bool                `toml:"enabled"`
	Interval   int                 `toml:"interval"` // poll cache lifetime, seconds
	Template   string              `toml:"template"` // empty = auto-derived rendering
	Thresholds []updates.Threshold `toml:"thresholds"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Pew: PewConfig{
			Enabled: true,
			Timeout: DefaultPewTimeout,
		},
		Updates: UpdatesConfig{
			Enabled:  true,
			Interval: DefaultUpdatesInterval,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pewbar", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Pew.Timeout < 0 {
		return fmt.Errorf("pew.timeout must not be negative")
	}
	if c.Updates.Interval < 0 {
		return fmt.Errorf("updates.interval must not be negative")
	}
	if len(c.Updates.Thresholds) > 0 {
		if err := updates.Thresholds(c.Updates.Thresholds).Validate(); err != nil {
			return fmt.Errorf("updates.thresholds: %w", err)
		}
	}
	return nil
}

// PewTimeout returns the pew display window as a duration.
func (c *Config) PewTimeout() time.Duration {
	if c.Pew.Timeout <= 0 {
		return DefaultPewTimeout * time.Second
	}
	return time.Duration(c.Pew.Timeout) * time.Second
}

// UpdatesInterval returns the updates poll interval as a duration.
func (c *Config) UpdatesInterval() time.Duration {
	if c.Updates.Interval <= 0 {
		return DefaultUpdatesInterval * time.Second
	}
	return time.Duration(c.Updates.Interval) * time.Second
}

// UpdatesThresholds returns the configured threshold table, or the
// reference table when none is set.
func (c *Config) UpdatesThresholds() updates.Thresholds {
	if len(c.Updates.Thresholds) == 0 {
		return updates.DefaultThresholds()
	}
	return updates.Thresholds(c.Updates.Thresholds)
}
