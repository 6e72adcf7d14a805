package config

import "strings"

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced, explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyOutputDefaults(&cfg.Output)
	applyScanDefaults(&cfg.Scan)
	applyIndexDefaults(&cfg.Index)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyOutputDefaults(cfg *OutputConfig) {
	if cfg.Format == "" {
		cfg.Format = "table"
	}
	cfg.Format = strings.ToLower(cfg.Format)
}

func applyScanDefaults(cfg *ScanConfig) {
	if cfg.Workers == 0 {
		cfg.Workers = 8
	}
}

func applyIndexDefaults(cfg *IndexConfig) {
	if cfg.Path == "" {
		cfg.Path = GetDefaultIndexPath()
	}
}

// GetDefaultConfig returns a configuration with all defaults applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
