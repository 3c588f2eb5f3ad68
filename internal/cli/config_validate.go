package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/achievement"
	"github.com/rshade/footprint/internal/config"
	"github.com/rshade/footprint/internal/factors"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global file, project overlay and
environment) for syntax and semantic correctness.

This includes:
- Output, logging and AI settings
- The tracking timezone
- Custom emission factor and badge catalogue files, when configured`,
		Example: `  # Validate current configuration
  footprint config validate

  # Validate and show detailed information
  footprint config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	table := factors.Default()
	if cfg.Catalogue.FactorsFile != "" {
		t, err := factors.LoadFile(cfg.Catalogue.FactorsFile)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		table = t
	}
	catalogue := achievement.DefaultCatalogue()
	if cfg.Catalogue.BadgesFile != "" {
		c, err := achievement.LoadCatalogue(cfg.Catalogue.BadgesFile)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		catalogue = c
	}

	out := cmd.OutOrStdout()
	if cfg.AI.Enabled && os.Getenv(cfg.AI.APIKeyEnv) == "" {
		fmt.Fprintf(out, "Warning: ai.enabled is true but $%s is empty; parsing will use rules only\n", cfg.AI.APIKeyEnv)
	}
	fmt.Fprintf(out, "✅ Configuration is valid\n")

	if verbose {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration details:")
		fmt.Fprintf(out, "  Config file: %s\n", cfg.ConfigPath())
		if dir := config.GetResolvedProjectDir(); dir != "" {
			fmt.Fprintf(out, "  Project directory: %s\n", dir)
		}
		fmt.Fprintf(out, "  Output format: %s\n", cfg.Output.DefaultFormat)
		fmt.Fprintf(out, "  Output precision: %d\n", cfg.Output.Precision)
		fmt.Fprintf(out, "  Logging level: %s\n", cfg.Logging.Level)
		fmt.Fprintf(out, "  Log file: %s\n", cfg.Logging.File)
		fmt.Fprintf(out, "  Database: %s\n", cfg.Storage.Database)
		fmt.Fprintf(out, "  Timezone: %s\n", cfg.Tracking.Timezone)
		fmt.Fprintf(out, "  Emission factors: version %s, %d activities\n", table.Version(), len(table.Factors("")))
		fmt.Fprintf(out, "  Badge catalogue: version %s, %d badges\n", catalogue.Version(), len(catalogue.Badges()))
		fmt.Fprintf(out, "  AI enhancer: enabled=%t model=%s min_confidence=%g\n",
			cfg.AI.Enabled, cfg.AI.Model, cfg.AI.MinConfidence)
	}

	return nil
}
