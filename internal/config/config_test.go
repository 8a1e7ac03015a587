package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's real config and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range []string{"ZFS", "IDLE", "FORMAT", "NO_COLOR", "BATCH", "LOG_FILE", "LOG_LEVEL", "TELEMETRY_ENABLED", "TELEMETRY_FILE"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		os.Unsetenv(EnvPrefix + "_" + k)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("zfs", "", "")
	fs.Duration("idle", 0, "")
	fs.String("format", "", "")
	fs.Bool("no-color", false, "")
	fs.String("log-level", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, "zfs", cfg.Tool)
	assert.Equal(t, 500*time.Millisecond, cfg.Idle)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
zfs: /sbin/zfs
idle: 2s
format: json
log:
  file: /tmp/zsnapfree.log
  level: debug
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/sbin/zfs", cfg.Tool)
	assert.Equal(t, 2*time.Second, cfg.Idle)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, "/tmp/zsnapfree.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "zfs: /sbin/zfs\n")
	t.Setenv("ZSNAPFREE_ZFS", "/opt/zfs/bin/zfs")
	t.Setenv("ZSNAPFREE_LOG_LEVEL", "warn")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/opt/zfs/bin/zfs", cfg.Tool)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ZSNAPFREE_ZFS", "/from/env")
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--zfs", "/from/flag", "--idle", "250ms", "--no-color"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Tool)
	assert.Equal(t, 250*time.Millisecond, cfg.Idle)
	assert.True(t, cfg.NoColor)
}

func TestLoad_UnsetFlagsKeepDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, "zfs", cfg.Tool)
	assert.Equal(t, FormatText, cfg.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, "format: xml\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestValidate(t *testing.T) {
	ok := Default()
	require.NoError(t, ok.Validate())

	cases := map[string]func(*Config){
		"empty tool":        func(c *Config) { c.Tool = "" },
		"zero idle":         func(c *Config) { c.Idle = 0 },
		"negative idle":     func(c *Config) { c.Idle = -time.Second },
		"bad format":        func(c *Config) { c.Format = "csv" },
		"bad level":         func(c *Config) { c.Log.Level = "loud" },
		"telemetry no file": func(c *Config) { c.Telemetry.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
