package cli_test

import (
	"bytes"
	"testing"

	"github.com/rshade/footprint/internal/cli"
	"github.com/rshade/footprint/internal/config"
)

// setupCLITest isolates the command from the real home directory and
// resets global config state afterwards. It returns FOOTPRINT_HOME.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("FOOTPRINT_HOME", home)
	t.Setenv("FOOTPRINT_LOG_LEVEL", "error")
	t.Setenv("FOOTPRINT_LOG_FORMAT", "")
	t.Setenv("FOOTPRINT_PROJECT_DIR", "")
	t.Setenv("FOOTPRINT_OUTPUT_FORMAT", "")
	t.Setenv("FOOTPRINT_DB_PATH", "")
	t.Setenv("FOOTPRINT_USER", "")

	config.ResetGlobalConfigForTest()
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	// Each invocation reads configuration afresh.
	config.ResetGlobalConfigForTest()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
