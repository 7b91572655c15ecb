// Package config loads the displayward configuration file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ExportConfig controls the one-shot export of the current layout to a
// compositor config fragment.
type ExportConfig struct {
	// Path of the generated file. Empty selects
	// ~/.config/sway/config.d/99-display-layout.conf.
	Path string `yaml:"path"`
	// Backup keeps a timestamped copy of the previous file.
	Backup bool `yaml:"backup"`
	// Reload asks the compositor to re-read its configuration afterwards.
	Reload bool `yaml:"reload"`
}

// Config is the effective displayward configuration.
type Config struct {
	// Backend selects the compositor adapter: "auto", "sway" or
	// "hyprland". Auto resolves from session environment markers once at
	// startup.
	Backend string `yaml:"backend"`

	// StorePath overrides the authorization file location.
	StorePath string `yaml:"store_path"`

	// PollIntervalSeconds is the daemon's reconcile interval.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// ApplyStoredMode sends the stored mode string in enable commands
	// instead of a preferred-mode request.
	ApplyStoredMode bool `yaml:"apply_stored_mode"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Export ExportConfig `yaml:"export"`
}

// DefaultConfig returns the built-in defaults used when no config file
// exists.
func DefaultConfig() *Config {
	return &Config{
		Backend:             "auto",
		PollIntervalSeconds: 10,
		LogLevel:            "info",
		Export: ExportConfig{
			Backup: true,
			Reload: true,
		},
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "", "auto", "sway", "hyprland":
	default:
		return fmt.Errorf("backend must be auto, sway or hyprland, got %q", c.Backend)
	}
	if c.PollIntervalSeconds < 1 {
		return fmt.Errorf("poll_interval_seconds must be >= 1, got %d", c.PollIntervalSeconds)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// PollInterval returns the reconcile interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// ParseLogLevel maps a config log level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be debug, info, warn or error, got %q", level)
	}
}
