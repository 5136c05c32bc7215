/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/osuvault/pkg/archive"
)

// Config represents the osuvault configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Archive Archive `yaml:"archive"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Archive contains encoder limits
type Archive struct {
	InitialCapacity int `yaml:"initial_capacity"`
	MaxSize         int `yaml:"max_size"`
	ScratchLimit    int `yaml:"scratch_limit"`
}

// Storage contains snapshot store settings
type Storage struct {
	Sync          bool `yaml:"sync"`
	KeepSnapshots int  `yaml:"keep_snapshots"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics contains metrics configuration
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	TextFile  string `yaml:"text_file"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Archive: Archive{
			InitialCapacity: 1024,
			MaxSize:         16 << 20,
			ScratchLimit:    1 << 16,
		},
		Storage: Storage{
			Sync:          true,
			KeepSnapshots: 32,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Metrics: Metrics{
			Enabled:   false,
			Namespace: "osuvault",
		},
	}
}

// Validate checks the configuration for values the rest of osuvault cannot use
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must be set"))
	}
	if c.Archive.InitialCapacity < 0 {
		errs = append(errs, fmt.Errorf("archive.initial_capacity must not be negative, got %d", c.Archive.InitialCapacity))
	}
	if c.Archive.MaxSize < 0 || c.Archive.MaxSize > archive.DefaultMaxSize {
		errs = append(errs, fmt.Errorf("archive.max_size must be between 0 and %d, got %d", archive.DefaultMaxSize, c.Archive.MaxSize))
	}
	if c.Archive.ScratchLimit < 0 {
		errs = append(errs, fmt.Errorf("archive.scratch_limit must not be negative, got %d", c.Archive.ScratchLimit))
	}
	if c.Storage.KeepSnapshots < 0 {
		errs = append(errs, fmt.Errorf("storage.keep_snapshots must not be negative, got %d", c.Storage.KeepSnapshots))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ArchiveOptions converts the archive section into serializer options
func (c *Config) ArchiveOptions() []archive.Option {
	var opts []archive.Option
	if c.Archive.InitialCapacity > 0 {
		opts = append(opts, archive.WithCapacity(c.Archive.InitialCapacity))
	}
	if c.Archive.MaxSize > 0 {
		opts = append(opts, archive.WithMaxSize(c.Archive.MaxSize))
	}
	if c.Archive.ScratchLimit > 0 {
		opts = append(opts, archive.WithScratchLimit(c.Archive.ScratchLimit))
	}
	return opts
}

// LoadConfig loads configuration from the specified path. Fields missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration pointing at dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./osuvault.yaml"
	}

	// For Linux/macOS, use ~/.config/osuvault/config.yaml
	configDir := filepath.Join(homeDir, ".config", "osuvault")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
