package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/footprint/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// Inside a directory tree that already has a .footprint/ directory (without
// --global), it writes the project-local config.yaml and .gitignore there.
// Otherwise, it creates the global ~/.footprint/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

When a project .footprint/ directory is found (or FOOTPRINT_PROJECT_DIR is set),
creates $PROJECT/.footprint/config.yaml with a .gitignore that keeps the activity
database out of version control. Use --global to initialize ~/.footprint instead.`,
		Example: `  # Create configuration (project-local when inside a project)
  footprint config init

  # Create global configuration
  footprint config init --global

  # Create configuration, overwriting existing
  footprint config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectDir := config.GetResolvedProjectDir()

			if projectDir != "" && !global {
				return initProjectConfig(cmd, projectDir, force)
			}

			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "force global configuration init even inside a project")

	return cmd
}

// checkNotExists refuses to overwrite path unless force is set.
func checkNotExists(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}

// initProjectConfig creates project-local config at projectDir/config.yaml with .gitignore.
func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, "config.yaml")
	if err := checkNotExists(configPath, force); err != nil {
		return err
	}

	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		return fmt.Errorf("failed to create project config directory: %w", err)
	}

	// The project keeps its own activity log next to its config.
	cfg := config.Default()
	cfg.Storage.Database = filepath.Join(projectDir, "footprint.db")
	cfg.SetConfigPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", configPath)
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created .gitignore to keep the activity log out of version control\n")
	}

	return nil
}

// initGlobalConfig creates global config at ~/.footprint/config.yaml.
func initGlobalConfig(cmd *cobra.Command, force bool) error {
	cfg := config.Default()
	if err := checkNotExists(cfg.ConfigPath(), force); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized successfully\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file: %s\n", cfg.ConfigPath())

	return nil
}
