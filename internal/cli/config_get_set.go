package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/config"
)

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Example: `  footprint config get output.default_format
  footprint config get storage.database`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return withKnownKeys(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command. It edits the global file;
// environment overrides are neither applied nor persisted.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value in the global configuration file",
		Example: `  footprint config set output.default_format json
  footprint config set tracking.timezone Europe/Berlin
  footprint config set ai.enabled true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			cfg, err := config.ForEdit()
			if err != nil {
				return fmt.Errorf("reading configuration: %w", err)
			}
			if err = cfg.Set(key, value); err != nil {
				return withKnownKeys(err)
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("refusing to save: %w", err)
			}
			if err = cfg.Save(); err != nil {
				return err
			}

			logger.Debug().Ctx(cmd.Context()).Str("key", key).Str("path", cfg.ConfigPath()).Msg("configuration updated")
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its effective value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			values := config.GetGlobalConfig().List()
			if format == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), values)
			}
			for _, k := range config.Keys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, values[k])
			}
			return nil
		},
	}
}

func withKnownKeys(err error) error {
	return fmt.Errorf("%w (known keys: %s)", err, strings.Join(config.Keys(), ", "))
}
