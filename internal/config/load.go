package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. ZSNAPFREE_ZFS or
// ZSNAPFREE_LOG_LEVEL.
const EnvPrefix = "ZSNAPFREE"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"zfs":            "zfs",
	"idle":           "idle",
	"format":         "format",
	"no-color":       "no-color",
	"batch":          "batch",
	"log-file":       "log.file",
	"log-level":      "log.level",
	"telemetry":      "telemetry.enabled",
	"telemetry-file": "telemetry.file",
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "zsnapfree", "config.yaml")
}

// Load resolves settings from defaults, the config file, the environment and
// flags, later sources winning. An explicit path must exist; the default
// path may be absent. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("zfs", def.Tool)
	v.SetDefault("idle", def.Idle)
	v.SetDefault("format", def.Format)
	v.SetDefault("no-color", def.NoColor)
	v.SetDefault("batch", def.Batch)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.file", def.Telemetry.File)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
