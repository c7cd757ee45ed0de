// Package config loads wordml settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/wordml/render"
)

// Defaults used when a field is absent from the file.
const (
	DefaultMaxWorkers     = 8
	DefaultRequestTimeout = 30 * time.Second
	DefaultIdleTimeout    = time.Minute
	DefaultFormat         = "text"
	DefaultLogLevel       = "warn"
)

// Config holds batch conversion and output settings.
type Config struct {
	// Workers is the preferred pool size; 0 means one per CPU.
	Workers    int `yaml:"workers"`
	MaxWorkers int `yaml:"max_workers"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`

	Format       string `yaml:"format"`
	ShowHidden   bool   `yaml:"show_hidden"`
	NoLabels     bool   `yaml:"no_labels"`
	Fragment     bool   `yaml:"fragment"`      // HTML only
	InlineStyles bool   `yaml:"inline_styles"` // HTML only

	LogLevel    string `yaml:"log_level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxWorkers:     DefaultMaxWorkers,
		RequestTimeout: DefaultRequestTimeout,
		IdleTimeout:    DefaultIdleTimeout,
		Format:         DefaultFormat,
		LogLevel:       DefaultLogLevel,
	}
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a config file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("idle_timeout must be positive, got %s", c.IdleTimeout))
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// PoolSize returns the number of workers to run: Workers, or the CPU count
// when unset, capped by MaxWorkers.
func (c Config) PoolSize() int {
	n := c.Workers
	if n == 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, c.MaxWorkers))
}

// OutputFormat returns the parsed output format. Invalid names fall back to
// plain text.
func (c Config) OutputFormat() render.Format {
	f, _ := render.ParseFormat(c.Format)
	return f
}

// Logger builds a zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
