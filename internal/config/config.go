package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"fertilizer-advisor/pkg/logging"
)

// Environment variables read by LoadConfig
const (
	EnvConfigPath  = "FERTREC_CONFIG"
	EnvLogLevel    = "FERTREC_LOG_LEVEL"
	EnvTablesPath  = "FERTREC_TABLES_PATH"
	EnvConcurrency = "FERTREC_CONCURRENCY"
)

// Config holds application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Batch   BatchConfig   `yaml:"batch"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// EngineConfig holds recommendation engine settings
type EngineConfig struct {
	// TablesPath points at a YAML file overriding the built-in reference tables
	TablesPath string `yaml:"tables_path"`
	// BlendWeight, when set, replaces the share of the universal optimum in
	// nutrient targets
	BlendWeight *float64 `yaml:"blend_weight"`
}

// BatchConfig holds batch processing settings
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Namespace    string `yaml:"namespace"`
	TextfilePath string `yaml:"textfile_path"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Batch:   BatchConfig{Concurrency: 4},
		Metrics: MetricsConfig{Namespace: "fertrec"},
	}
}

// LoadConfig loads defaults, then the YAML file named by FERTREC_CONFIG (if
// any), then environment overrides.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.Getenv(EnvConfigPath))
}

// LoadConfigFrom is LoadConfig with an explicit file path; an empty path
// skips the file.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvTablesPath); v != "" {
		c.Engine.TablesPath = v
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvConcurrency, v, err)
		}
		c.Batch.Concurrency = n
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if w := c.Engine.BlendWeight; w != nil && (*w < 0 || *w > 1) {
		errs = append(errs, fmt.Errorf("engine.blend_weight %v outside [0,1]", *w))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}
	if c.Metrics.Namespace == "" {
		errs = append(errs, errors.New("metrics.namespace is required"))
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed logging level, falling back to info
func (c *Config) LogLevel() logging.LogLevel {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.InfoLevel
	}
	return level
}
