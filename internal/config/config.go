// Package config loads per-project dirc configuration from a YAML file in
// the validated root. Command-line flags override file values; a missing
// file is not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Filename is the project configuration file looked up inside the root.
// Its basename is always ignored during validation, like the spec file.
const Filename = ".dirc.yaml"

// Config represents dirc configuration options
type Config struct {
	// Ignore lists basename globs that are invisible to every check.
	Ignore []string `yaml:"ignore"`

	// AllowExtra tolerates unlisted entries in every directory.
	AllowExtra bool `yaml:"allow_extra"`

	// StrictRoot holds the root to the same strictness as declared
	// subdirectories instead of the default leniency.
	StrictRoot bool `yaml:"strict_root"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Ignore:     nil,
		AllowExtra: false,
		StrictRoot: false,
		LogLevel:   "info",
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
