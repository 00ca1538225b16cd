// Package config provides configuration loading and management for volumepipe.
// It handles loading configuration from YAML files, applies environment
// overrides and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"volumepipe/pkg/threader"
)

// EnvNumThreads overrides Threading.NumThreads when set.
const EnvNumThreads = "VOLUMEPIPE_NUM_THREADS"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Threading parameters
	Threading struct {
		// NumThreads is the number of workers a filter asks for by default
		NumThreads int `yaml:"numThreads"`

		// MaxThreads caps NumThreads; it may not exceed the global maximum
		MaxThreads int `yaml:"maxThreads"`

		// UsePool runs filters on a persistent worker pool instead of fresh goroutines
		UsePool bool `yaml:"usePool"`
	} `yaml:"threading"`

	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// Console selects human-readable output instead of JSON
		Console bool `yaml:"console"`
	} `yaml:"logging"`

	// Output parameters
	Output struct {
		// SaveSlices writes the result volume as PNG slices
		SaveSlices bool `yaml:"saveSlices"`

		SlicesDir string `yaml:"slicesDir"`

		// Axis is the axis the slices are taken across
		Axis int `yaml:"axis"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Threading.NumThreads = runtime.GOMAXPROCS(0)
	cfg.Threading.MaxThreads = threader.GlobalMaximumThreads
	cfg.Threading.UsePool = false

	cfg.Logging.Level = "info"
	cfg.Logging.Console = true

	cfg.Output.SaveSlices = false
	cfg.Output.SlicesDir = "slices"
	cfg.Output.Axis = 2

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	if v := os.Getenv(EnvNumThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", EnvNumThreads, err)
		}
		cfg.Threading.NumThreads = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	if c.Threading.NumThreads < 1 {
		return fmt.Errorf("invalid config: threading.numThreads must be positive, got %d", c.Threading.NumThreads)
	}
	if c.Threading.MaxThreads < 1 || c.Threading.MaxThreads > threader.GlobalMaximumThreads {
		return fmt.Errorf("invalid config: threading.maxThreads must be in [1, %d], got %d",
			threader.GlobalMaximumThreads, c.Threading.MaxThreads)
	}
	if c.Output.Axis < 0 {
		return fmt.Errorf("invalid config: output.axis must not be negative, got %d", c.Output.Axis)
	}
	if c.Output.SaveSlices && c.Output.SlicesDir == "" {
		return errors.New("invalid config: output.slicesDir is required when saveSlices is set")
	}
	return nil
}

// Threads returns NumThreads capped by MaxThreads.
func (c *Config) Threads() int {
	if c.Threading.NumThreads > c.Threading.MaxThreads {
		return c.Threading.MaxThreads
	}
	return c.Threading.NumThreads
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
