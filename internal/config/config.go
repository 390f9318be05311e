// Package config loads the strvars.yml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/stefanvanburen/strvars/internal/flyout"
	"github.com/stefanvanburen/strvars/internal/workspace"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "strvars.yml"

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the top-level strvars.yml configuration.
type Config struct {
	// DefaultName is the identifier the flyout lists first and never offers
	// as a template.
	DefaultName string `yaml:"default_name"`
	// BlockTypes are the block types registered with the editor.
	BlockTypes []string `yaml:"block_types"`
	// VariableTypes are extra block types read as VAR field blocks.
	VariableTypes []string `yaml:"variable_types,omitempty"`
	LogLevel      string   `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultName: "item",
		BlockTypes:  slices.Clone(workspace.VariableTypes),
		LogLevel:    "info",
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads path, or DefaultFile when path is empty. A missing
// DefaultFile is not an error.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	config, err := Load(DefaultFile)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultName == "" {
		return fmt.Errorf("default_name is required")
	}
	if err := workspace.ValidateName(c.DefaultName); err != nil {
		return fmt.Errorf("default_name is not a valid identifier: %w", err)
	}
	for i, t := range c.BlockTypes {
		if t == "" {
			return fmt.Errorf("block_types[%d] is empty", i)
		}
	}
	for i, t := range c.VariableTypes {
		if t == "" {
			return fmt.Errorf("variable_types[%d] is empty", i)
		}
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %v, got %q", logLevels, c.LogLevel)
	}
	return nil
}

// Registry returns the configured block types as a flyout registry.
func (c *Config) Registry() flyout.Registry {
	return flyout.NewRegistry(c.BlockTypes...)
}

// WorkspaceOptions returns the parse options implied by the configuration.
func (c *Config) WorkspaceOptions() []workspace.Option {
	if len(c.VariableTypes) == 0 {
		return nil
	}
	return []workspace.Option{workspace.WithVariableTypes(c.VariableTypes...)}
}
