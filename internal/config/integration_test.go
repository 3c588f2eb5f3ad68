package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/footprint/internal/config"
)

func TestGetConfigDir(t *testing.T) {
	t.Run("FOOTPRINT_HOME wins", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("FOOTPRINT_HOME", home)

		dir, err := config.GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, home, dir)
	})

	t.Run("falls back to the user home", func(t *testing.T) {
		userHome := t.TempDir()
		t.Setenv("FOOTPRINT_HOME", "")
		t.Setenv("HOME", userHome)

		dir, err := config.GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userHome, ".footprint"), dir)
	})
}

func TestEnsureConfigDir(t *testing.T) {
	home := filepath.Join(t.TempDir(), "fp")
	t.Setenv("FOOTPRINT_HOME", home)

	require.NoError(t, config.EnsureConfigDir())
	info, err := os.Stat(home)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGlobalConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FOOTPRINT_HOME", home)
	t.Setenv("FOOTPRINT_OUTPUT_FORMAT", "")
	t.Setenv("FOOTPRINT_DB_PATH", "")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("output:\n  default_format: json\n  precision: 3\n"), 0o600))

	config.ResetGlobalConfigForTest()
	config.SetResolvedProjectDir("")
	t.Cleanup(config.ResetGlobalConfigForTest)

	assert.Equal(t, config.FormatJSON, config.GetDefaultOutputFormat())
	assert.Equal(t, 3, config.GetOutputPrecision())
	assert.Equal(t, filepath.Join(home, "footprint.db"), config.GetDatabasePath())
	assert.Same(t, config.GetGlobalConfig(), config.GetGlobalConfig())
}

func TestEnsureLogDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FOOTPRINT_HOME", home)
	logFile := filepath.Join(home, "logs", "footprint.log")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("logging:\n  file: "+logFile+"\n"), 0o600))

	config.ResetGlobalConfigForTest()
	config.SetResolvedProjectDir("")
	t.Cleanup(config.ResetGlobalConfigForTest)

	require.NoError(t, config.EnsureLogDir())
	_, err := os.Stat(filepath.Dir(logFile))
	require.NoError(t, err)
}

func TestToLoggingConfig(t *testing.T) {
	stderr := config.LoggingConfig{Level: "debug", Format: "json"}
	lc := stderr.ToLoggingConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stderr", lc.Output)

	file := config.LoggingConfig{Level: "info", Format: "console", File: "/tmp/fp.log"}
	lc = file.ToLoggingConfig()
	assert.Equal(t, "file", lc.Output)
	assert.Equal(t, "/tmp/fp.log", lc.File)
}
