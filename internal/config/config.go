package config

import (
	"errors"
	"fmt"
	"time"

	"zsnapfree/internal/logging"
	"zsnapfree/internal/recompute"
	"zsnapfree/internal/telemetry"
	"zsnapfree/internal/zfs"
)

// Output formats for the exit summary.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Tool      string          `mapstructure:"zfs"`      // zfs binary
	Idle      time.Duration   `mapstructure:"idle"`     // quiet time before re-estimating
	Format    string          `mapstructure:"format"`   // text, json or yaml
	NoColor   bool            `mapstructure:"no-color"` // plain ASCII rendering
	Batch     bool            `mapstructure:"batch"`    // read actions from stdin instead of the TUI
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tool:   zfs.DefaultPath,
		Idle:   recompute.DefaultIdle,
		Format: FormatText,
		Log:    LogConfig{Level: "info"},
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Tool == "" {
		return errors.New("zfs: tool path must not be empty")
	}
	if c.Idle <= 0 {
		return fmt.Errorf("idle: must be positive, got %s", c.Idle)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("format: unknown format %q (want text, json or yaml)", c.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Telemetry.Enabled && c.Telemetry.File == "" {
		return errors.New("telemetry.file: required when telemetry is enabled")
	}
	return nil
}

func (c Config) LoggingConfig() logging.Config {
	return logging.Config{File: c.Log.File, Level: c.Log.Level}
}

func (c Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{Enabled: c.Telemetry.Enabled, File: c.Telemetry.File}
}
