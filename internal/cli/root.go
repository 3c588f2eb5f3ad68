package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isWriterTerminal reports whether w is a terminal. Buffers used in tests
// never are.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// baseLogger is logger without the cli component, used to derive loggers
// for the packages the CLI drives.
var baseLogger zerolog.Logger //nolint:gochecknoglobals // Set once per invocation by setupLogging

// NewRootCmd creates the root Cobra command for the footprint CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "footprint",
		Short:   "Track the carbon footprint of everyday activities",
		Long:    "footprint: describe what you did in plain words, see its emissions and earn badges for greener habits",
		Version: ver,
		Example: rootCmdExample,
		// Errors are reported by main; usage is noise for runtime failures.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cwd, err := os.Getwd(); err == nil {
				config.SetResolvedProjectDir(config.ResolveProjectDir(cwd))
			}
			config.InitGlobalConfig()

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table or json (default from config)")
	cmd.PersistentFlags().String("db", "", "activity database path (default from config)")
	cmd.AddCommand(
		NewParseCmd(), NewLogCmd(), NewHistoryCmd(),
		newBadgesCmd(), NewFactorsCmd(), newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # See the footprint of a trip without recording it
  footprint parse "I drove 10 km to work"

  # Record an activity for a user
  footprint log --user alice "I cycled 8 km"

  # Show a user's badge progress
  footprint badges --user alice

  # List emission factors for food
  footprint factors --category food

  # Initialize configuration
  footprint config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
