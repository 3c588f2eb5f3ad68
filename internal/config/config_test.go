package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/footprint/internal/config"
)

func TestDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FOOTPRINT_HOME", home)

	cfg := config.Default()
	assert.Equal(t, config.FormatTable, cfg.Output.DefaultFormat)
	assert.Equal(t, 2, cfg.Output.Precision)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "footprint.db"), cfg.Storage.Database)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.ConfigPath())
	assert.False(t, cfg.AI.Enabled)
	assert.InDelta(t, 0.6, cfg.AI.MinConfidence, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("FOOTPRINT_HOME", t.TempDir())
	t.Setenv("FOOTPRINT_LOG_LEVEL", "debug")
	t.Setenv("FOOTPRINT_LOG_FORMAT", "json")
	t.Setenv("FOOTPRINT_DB_PATH", "/tmp/other.db")
	t.Setenv("FOOTPRINT_OUTPUT_FORMAT", "json")

	cfg := config.New()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Database)
	assert.Equal(t, config.FormatJSON, cfg.Output.DefaultFormat)
}

func TestNew_MalformedFileReportedByValidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FOOTPRINT_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("output: ["), 0o600))

	cfg := config.New()
	require.Error(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("FOOTPRINT_HOME", t.TempDir())
	t.Setenv("FOOTPRINT_OUTPUT_FORMAT", "")

	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg.SetConfigPath(path)
	require.NoError(t, cfg.Set("output.default_format", "json"))
	require.NoError(t, cfg.Set("ai.min_confidence", "0.75"))
	require.NoError(t, cfg.Save())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.FormatJSON, loaded.Output.DefaultFormat)
	assert.InDelta(t, 0.75, loaded.AI.MinConfidence, 1e-9)
	assert.Equal(t, path, loaded.ConfigPath())

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestGetSet(t *testing.T) {
	t.Setenv("FOOTPRINT_HOME", t.TempDir())
	cfg := config.Default()

	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"output.precision", "4", false},
		{"output.precision", "four", true},
		{"ai.enabled", "true", false},
		{"ai.enabled", "maybe", true},
		{"ai.min_confidence", "0.9", false},
		{"ai.min_confidence", "high", true},
		{"tracking.timezone", "UTC", false},
		{"logging.level", "warn", false},
		{"no.such.key", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	_, err := cfg.Get("no.such.key")
	require.Error(t, err)
}

func TestKeysAndList(t *testing.T) {
	t.Setenv("FOOTPRINT_HOME", t.TempDir())

	keys := config.Keys()
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "output.default_format")
	assert.Contains(t, keys, "storage.database")

	list := config.Default().List()
	assert.Len(t, list, len(keys))
	assert.Equal(t, "table", list["output.default_format"])
}

func TestValidate(t *testing.T) {
	t.Setenv("FOOTPRINT_HOME", t.TempDir())

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"bad format", func(c *config.Config) { c.Output.DefaultFormat = "xml" }},
		{"negative precision", func(c *config.Config) { c.Output.Precision = -1 }},
		{"precision too high", func(c *config.Config) { c.Output.Precision = 7 }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"empty level", func(c *config.Config) { c.Logging.Level = "" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"no database", func(c *config.Config) { c.Storage.Database = "" }},
		{"confidence above one", func(c *config.Config) { c.AI.MinConfidence = 1.5 }},
		{"ai without key env", func(c *config.Config) { c.AI.Enabled = true; c.AI.APIKeyEnv = "" }},
		{"bad timezone", func(c *config.Config) { c.Tracking.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	t.Setenv("FOOTPRINT_HOME", t.TempDir())
	cfg := config.Default()

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Tracking.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestForEdit_IgnoresEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FOOTPRINT_HOME", home)
	t.Setenv("FOOTPRINT_LOG_LEVEL", "trace")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("logging:\n  level: warn\n"), 0o600))

	cfg, err := config.ForEdit()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("logging: ["), 0o600))
	_, err = config.ForEdit()
	require.Error(t, err)
}
