// Package config loads and persists the richscan configuration.
//
// Configuration sources, highest precedence first:
//  1. CLI flags
//  2. Environment variables (RICHSCAN_*)
//  3. Configuration file (YAML)
//  4. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config captures the static configuration of the richscan tool.
type Config struct {
	// Logging controls diagnostic output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Output controls how command results are rendered.
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Scan controls directory scanning.
	Scan ScanConfig `mapstructure:"scan" yaml:"scan"`

	// Index configures the local fingerprint index.
	Index IndexConfig `mapstructure:"index" yaml:"index"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR" yaml:"level"`

	// Format specifies the log output format, text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stderr, stdout, or a file
	// path. Logs default to stderr so report output stays parseable.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	// Format is the default rendering of command results.
	// Valid values: table, json, yaml.
	Format string `mapstructure:"format" validate:"required,oneof=table json yaml" yaml:"format"`
}

// ScanConfig controls directory scanning.
type ScanConfig struct {
	// Workers is the number of files decoded concurrently.
	Workers int `mapstructure:"workers" validate:"gte=1,lte=128" yaml:"workers"`
}

// IndexConfig configures the fingerprint index.
type IndexConfig struct {
	// Path is the directory holding the index database.
	Path string `mapstructure:"path" validate:"required" yaml:"path"`
}

// Load loads configuration from file, environment, and defaults. A
// missing config file is fine; defaults cover everything.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories. The file
// is written with owner-only permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper wires environment variables and the config file search.
// Environment variables use the RICHSCAN_ prefix with underscores, for
// example RICHSCAN_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("RICHSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. It reports
// whether a file was found; a missing file is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// getConfigDir returns the configuration directory: $XDG_CONFIG_HOME or
// ~/.config, with the current directory as a last resort.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "richscan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "richscan")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetDefaultIndexPath returns the default fingerprint index directory:
// $XDG_DATA_HOME or ~/.local/share.
func GetDefaultIndexPath() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "richscan", "index")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "richscan-index")
	}
	return filepath.Join(home, ".local", "share", "richscan", "index")
}
