package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Broker    BrokerConfig
	Catalog   CatalogConfig
	History   HistoryConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000" toml:"port"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" toml:"shutdown_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds connection rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
}

// BrokerConfig holds job broker configuration.
type BrokerConfig struct {
	RunnerURL     string        `envconfig:"RUNNER_URL" default:"" toml:"runner_url"`
	RunnerTimeout time.Duration `envconfig:"RUNNER_TIMEOUT" default:"15s" toml:"runner_timeout"`
	ExecutionTime time.Duration `envconfig:"JOB_EXECUTION_TIME" default:"5s" toml:"execution_time"`
}

// CatalogConfig holds screen catalog configuration.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH" default:"" toml:"path"`
}

// HistoryConfig holds history log configuration.
type HistoryConfig struct {
	Capacity int `envconfig:"HISTORY_CAPACITY" default:"512" toml:"capacity"`
}

// Load loads configuration from environment variables. When DK400_CONFIG
// names a TOML file, its values are applied on top of the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path := os.Getenv("DK400_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// applyFile overlays a TOML config file onto cfg.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Broker: BrokerConfig{
			RunnerTimeout: 15 * time.Second,
			ExecutionTime: 5 * time.Second,
		},
		History: HistoryConfig{
			Capacity: 512,
		},
	}
}
