// Package config loads, validates and persists footprint's YAML
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

const (
	defaultPrecision     = 2
	maxPrecision         = 6
	defaultMinConfidence = 0.6
	defaultAIModel       = "gemini-1.5-flash"
	defaultAPIKeyEnv     = "GEMINI_API_KEY"
	configFileName       = "config.yaml"
	databaseFileName     = "footprint.db"
	outputTypeFile       = "file"
)

// Config is the complete footprint configuration.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
	AI        AIConfig        `yaml:"ai"`
	Tracking  TrackingConfig  `yaml:"tracking"`

	configPath string
	loadErr    error
}

// OutputConfig controls command output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// StorageConfig locates the activity database.
type StorageConfig struct {
	Database string `yaml:"database"`
}

// CatalogueConfig optionally replaces the embedded data files.
type CatalogueConfig struct {
	BadgesFile  string `yaml:"badges_file,omitempty"`
	FactorsFile string `yaml:"factors_file,omitempty"`
}

// AIConfig controls the optional Gemini parse enhancer. The API key is read
// from the environment variable named by APIKeyEnv, never from this file.
type AIConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Model         string  `yaml:"model"`
	APIKeyEnv     string  `yaml:"api_key_env"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// TrackingConfig controls how calendar days are determined.
type TrackingConfig struct {
	Timezone string `yaml:"timezone"`
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = ".footprint"
	}
	return &Config{
		Output:  OutputConfig{DefaultFormat: FormatTable, Precision: defaultPrecision},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Storage: StorageConfig{Database: filepath.Join(dir, databaseFileName)},
		AI: AIConfig{
			Model:         defaultAIModel,
			APIKeyEnv:     defaultAPIKeyEnv,
			MinConfidence: defaultMinConfidence,
		},
		Tracking:   TrackingConfig{Timezone: "Local"},
		configPath: filepath.Join(dir, configFileName),
	}
}

// New returns the configuration from the global config file layered over
// the defaults, with environment overrides applied. A missing file is not
// an error; a malformed one is reported by Validate.
func New() *Config {
	cfg := Default()
	if err := cfg.loadFile(cfg.configPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		cfg.loadErr = err
	}
	cfg.applyEnv()
	return cfg
}

// ForEdit returns the global file layered over the defaults without
// environment overrides, for commands that write the file back.
func ForEdit() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(cfg.configPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return cfg, nil
}

// Load reads the file at path over the defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FOOTPRINT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FOOTPRINT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("FOOTPRINT_DB_PATH"); v != "" {
		c.Storage.Database = v
	}
	if v := os.Getenv("FOOTPRINT_OUTPUT_FORMAT"); v != "" {
		c.Output.DefaultFormat = v
	}
}

// ConfigPath returns where Save writes.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes where Save writes.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", c.configPath, err)
	}
	return nil
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if c.loadErr != nil {
		return c.loadErr
	}
	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("output.default_format must be %q or %q, got %q", FormatTable, FormatJSON, c.Output.DefaultFormat)
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		return fmt.Errorf("output.precision must be between 0 and %d, got %d", maxPrecision, c.Output.Precision)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	if c.Storage.Database == "" {
		return errors.New("storage.database must be set")
	}
	if c.AI.MinConfidence < 0 || c.AI.MinConfidence > 1 {
		return fmt.Errorf("ai.min_confidence must be between 0 and 1, got %v", c.AI.MinConfidence)
	}
	if c.AI.Enabled && c.AI.APIKeyEnv == "" {
		return errors.New("ai.api_key_env must name an environment variable when ai is enabled")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves tracking.timezone. Empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Tracking.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Tracking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("tracking.timezone %q: %w", c.Tracking.Timezone, err)
	}
	return loc, nil
}

// field binds a dotted key to a config value.
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

//nolint:gochecknoglobals // Fixed key table for get/set/list.
var fields = map[string]field{
	"output.default_format": stringField(func(c *Config) *string { return &c.Output.DefaultFormat }),
	"output.precision": {
		get: func(c *Config) string { return strconv.Itoa(c.Output.Precision) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("precision must be an integer: %w", err)
			}
			c.Output.Precision = n
			return nil
		},
	},
	"logging.level":          stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":         stringField(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":           stringField(func(c *Config) *string { return &c.Logging.File }),
	"storage.database":       stringField(func(c *Config) *string { return &c.Storage.Database }),
	"catalogue.badges_file":  stringField(func(c *Config) *string { return &c.Catalogue.BadgesFile }),
	"catalogue.factors_file": stringField(func(c *Config) *string { return &c.Catalogue.FactorsFile }),
	"ai.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.AI.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("enabled must be true or false: %w", err)
			}
			c.AI.Enabled = b
			return nil
		},
	},
	"ai.model":       stringField(func(c *Config) *string { return &c.AI.Model }),
	"ai.api_key_env": stringField(func(c *Config) *string { return &c.AI.APIKeyEnv }),
	"ai.min_confidence": {
		get: func(c *Config) string { return strconv.FormatFloat(c.AI.MinConfidence, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("min_confidence must be a number: %w", err)
			}
			c.AI.MinConfidence = f
			return nil
		},
	},
	"tracking.timezone": stringField(func(c *Config) *string { return &c.Tracking.Timezone }),
}

// Get returns the value at a dotted key such as "output.default_format".
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key %q", key)
	}
	return f.get(c), nil
}

// Set assigns the value at a dotted key. The result is not validated.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return f.set(c, value)
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns every key with its current value.
func (c *Config) List() map[string]string {
	out := make(map[string]string, len(fields))
	for k, f := range fields {
		out[k] = f.get(c)
	}
	return out
}
