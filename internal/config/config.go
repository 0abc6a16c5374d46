// Package config loads the command line configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/brunoga/layerstack/history"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LAYERSTACK_"

// Config is the complete CLI configuration.
type Config struct {
	History HistoryConfig `toml:"history"`
	Compile CompileConfig `toml:"compile"`
	Log     LogConfig     `toml:"log"`
	Export  ExportConfig  `toml:"export"`
	Preview PreviewConfig `toml:"preview"`
	Metrics MetricsConfig `toml:"metrics"`
}

type HistoryConfig struct {
	MaxSize int `toml:"max_size"`
}

type CompileConfig struct {
	// Debounce is the quiet period before a watched change recompiles.
	Debounce time.Duration `toml:"debounce"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ExportConfig struct {
	ArrayDelimiter string `toml:"array_delimiter"`
}

type PreviewConfig struct {
	// Table is an optional YAML file of path labels and units.
	Table string `toml:"table"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.History.MaxSize == 0 {
		cfg.History.MaxSize = history.DefaultMaxSize
	}
	if cfg.Compile.Debounce == 0 {
		cfg.Compile.Debounce = 250 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Export.ArrayDelimiter == "" {
		cfg.Export.ArrayDelimiter = ","
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9090"
	}
}

// Load reads the TOML file at path, applies defaults and environment
// overrides and validates the result. An empty path loads the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown configuration key %q in %q", undecoded[0].String(), path)
		}
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(EnvPrefix + "HISTORY_MAX_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.MaxSize = i
		}
	}
	if val := os.Getenv(EnvPrefix + "COMPILE_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Compile.Debounce = d
		}
	}
	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(EnvPrefix + "LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv(EnvPrefix + "EXPORT_ARRAY_DELIMITER"); val != "" {
		cfg.Export.ArrayDelimiter = val
	}
	if val := os.Getenv(EnvPrefix + "PREVIEW_TABLE"); val != "" {
		cfg.Preview.Table = val
	}
	if val := os.Getenv(EnvPrefix + "METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "METRICS_LISTEN"); val != "" {
		cfg.Metrics.Listen = val
	}
}

// Validate checks a configuration after defaults are applied.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.History.MaxSize < 1 {
		errs = append(errs, fmt.Errorf("history.max_size must be positive, got %d", cfg.History.MaxSize))
	}
	if cfg.Compile.Debounce < 0 {
		errs = append(errs, fmt.Errorf("compile.debounce must not be negative, got %s", cfg.Compile.Debounce))
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format))
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		errs = append(errs, errors.New("metrics.listen is required when metrics are enabled"))
	}
	return errors.Join(errs...)
}
