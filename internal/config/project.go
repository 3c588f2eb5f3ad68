package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// projectDirName is the per-project configuration directory.
const projectDirName = ".footprint"

// resolvedProjectDir holds the resolved project directory path for use
// by other config functions during the lifetime of a CLI invocation.
var (
	resolvedProjectDir   string       //nolint:gochecknoglobals // Set once at startup, read by config loaders
	resolvedProjectDirMu sync.RWMutex //nolint:gochecknoglobals // Protects resolvedProjectDir
)

// SetResolvedProjectDir stores the resolved project directory.
func SetResolvedProjectDir(dir string) {
	resolvedProjectDirMu.Lock()
	defer resolvedProjectDirMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the stored resolved project directory.
func GetResolvedProjectDir() string {
	resolvedProjectDirMu.RLock()
	defer resolvedProjectDirMu.RUnlock()
	return resolvedProjectDir
}

// ResolveProjectDir finds the project-local .footprint directory. It checks
// FOOTPRINT_PROJECT_DIR, then walks up from startDir looking for an existing
// .footprint directory that is not the global config directory. Returns ""
// when there is none. Never creates anything.
func ResolveProjectDir(startDir string) string {
	if envDir := os.Getenv("FOOTPRINT_PROJECT_DIR"); envDir != "" {
		return toAbsProjectDir(envDir)
	}

	global, _ := GetConfigDir()
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, projectDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() && candidate != global {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// NewWithProjectDir loads the global config and shallow-merges the project
// overlay at projectDir/config.yaml on top. An empty projectDir or missing
// overlay yields New().
func NewWithProjectDir(projectDir string) *Config {
	cfg := New()
	if projectDir == "" {
		return cfg
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return cfg
	}

	merged := New()
	if err := ShallowMergeYAML(merged, overlayPath); err != nil {
		zerolog.DefaultContextLogger.Warn().
			Str("component", "config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global defaults")
		return cfg
	}
	// Environment overrides win over both files.
	merged.applyEnv()
	return merged
}

// toAbsProjectDir converts dir to an absolute path ending in .footprint.
func toAbsProjectDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if filepath.Base(abs) == projectDirName {
		return abs
	}
	return filepath.Join(abs, projectDirName)
}
