// Package config loads the dotprod command configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/LynnColeArt/dotprod"
)

// Config holds all dotprod command configuration.
type Config struct {
	// Backend is one of gpu, cpu or emulated.
	Backend string `yaml:"backend"`

	// Verify runs the CPU alongside the selected backend and compares.
	Verify bool `yaml:"verify"`

	Operands Operands `yaml:"operands"`

	Logging LoggingConfig `yaml:"logging"`
}

// Operands are the two input vectors.
type Operands struct {
	A []uint32 `yaml:"a"`
	B []uint32 `yaml:"b"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the default configuration: the example operands
// on the GPU.
func DefaultConfig() *Config {
	a, b := dotprod.ExampleOperands()
	return &Config{
		Backend: dotprod.BackendGPU.String(),
		Operands: Operands{
			A: a,
			B: b,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. An empty path or a missing
// file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if backend := os.Getenv("DOTPROD_BACKEND"); backend != "" {
		c.Backend = backend
	}
	if level := os.Getenv("DOTPROD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the backend name and the operand lengths.
func (c *Config) Validate() error {
	if _, err := dotprod.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(c.Operands.A) != len(c.Operands.B) {
		return fmt.Errorf("invalid config: %w",
			dotprod.NewLengthMismatchError("config.Validate", len(c.Operands.A), len(c.Operands.B)))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid config: unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// BackendValue returns the parsed backend. Call Validate first.
func (c *Config) BackendValue() dotprod.Backend {
	b, _ := dotprod.ParseBackend(c.Backend)
	return b
}
