// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads.
const EnvVar = "INKSTAND_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local writing and testing.
	Development Environment = "development"
	// Staging is for a pre-production copy of the store.
	Staging Environment = "staging"
	// Production is the live store.
	Production Environment = "production"
)

// Compression values accepted by backup.compression.
var compressionValues = []string{"none", "lz4", "zstd"}

// Config is the master configuration for Inkstand.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// History configures article revision retention.
	History HistoryConfig `yaml:"history"`

	// Keys configures article key generation.
	Keys KeysConfig `yaml:"keys"`

	// Backup configures snapshot archives.
	Backup BackupConfig `yaml:"backup"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	History *HistoryConfig `yaml:"history,omitempty"`
	Backup  *BackupConfig  `yaml:"backup,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for Inkstand data.
	Root string `yaml:"root"`

	// Store is the article storage directory. Backups copy it whole.
	Store string `yaml:"store"`

	// Backups is where `inkstand backup` puts snapshots when no target
	// is given.
	Backups string `yaml:"backups"`
}

// HistoryConfig configures revision retention.
type HistoryConfig struct {
	// MaxHistory is the most revisions kept per article. Zero keeps
	// none. A pointer so an override can set zero explicitly.
	MaxHistory *int `yaml:"max_history"`
}

// KeysConfig configures key generation.
type KeysConfig struct {
	// MaxAttempts bounds candidate keys drawn per article.
	MaxAttempts int `yaml:"max_attempts"`
}

// BackupConfig configures archives.
type BackupConfig struct {
	// Compression is the default archive compression: none, lz4, or zstd.
	Compression string `yaml:"compression"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`
}

// Default returns the default configuration. LoadFile starts from it
// before reading the file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "inkstand")
	maxHistory := 20

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:    defaultRoot,
			Store:   filepath.Join(defaultRoot, "db"),
			Backups: filepath.Join(defaultRoot, "backups"),
		},
		History: HistoryConfig{MaxHistory: &maxHistory},
		Keys:    KeysConfig{MaxAttempts: 1 << 16},
		Backup:  BackupConfig{Compression: "zstd"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load loads configuration from the file named by INKSTAND_CONFIG.
// It fails when the variable is unset; callers that want defaults use
// Default explicitly.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your inkstand.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, on top of
// Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Expand applies environment overrides and variable expansion to a
// config built in code. LoadFile does this itself.
func (c *Config) Expand() {
	c.applyEnvironmentOverrides()
	c.expandVariables()
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{Log: &LogConfig{Level: "warn"}}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Store != "" {
			c.Paths.Store = overrides.Paths.Store
		}
		if overrides.Paths.Backups != "" {
			c.Paths.Backups = overrides.Paths.Backups
		}
	}
	if overrides.History != nil && overrides.History.MaxHistory != nil {
		c.History.MaxHistory = overrides.History.MaxHistory
	}
	if overrides.Backup != nil && overrides.Backup.Compression != "" {
		c.Backup.Compression = overrides.Backup.Compression
	}
	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"INKSTAND_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["INKSTAND_ROOT"] = c.Paths.Root // Dependent paths see the expanded root.

	c.Paths.Store = expandVars(c.Paths.Store, vars)
	c.Paths.Backups = expandVars(c.Paths.Backups, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, errors.New("paths.root is required"))
	}
	if c.Paths.Store == "" {
		errs = append(errs, errors.New("paths.store is required"))
	}
	if c.Paths.Backups == "" {
		errs = append(errs, errors.New("paths.backups is required"))
	}

	if c.History.MaxHistory == nil {
		errs = append(errs, errors.New("history.max_history is required"))
	} else if *c.History.MaxHistory < 0 {
		errs = append(errs, fmt.Errorf("history.max_history must not be negative, got %d", *c.History.MaxHistory))
	}

	if c.Keys.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("keys.max_attempts must be positive, got %d", c.Keys.MaxAttempts))
	}

	if !slices.Contains(compressionValues, c.Backup.Compression) {
		errs = append(errs, fmt.Errorf("backup.compression must be one of: %v", compressionValues))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// MaxHistory returns history.max_history, or zero when unset.
func (c *Config) MaxHistory() int {
	if c.History.MaxHistory == nil {
		return 0
	}
	return *c.History.MaxHistory
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error: got %q", c.Log.Level)
	}
	return level, nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Store, c.Paths.Backups} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
