package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// StoreConfig configures the upload and saved-config stores
type StoreConfig struct {
	UploadBackend   string        `mapstructure:"upload_backend"`    // memory (default) or redis
	UploadTTL       time.Duration `mapstructure:"upload_ttl"`        // expiry for redis-backed uploads (0 = none)
	RedisURL        string        `mapstructure:"redis_url"`         // redis connection URL when backend=redis
	ConfigStorePath string        `mapstructure:"config_store_path"` // JSON file for saved configurations
}

// ForecastConfig configures the forecasting engine
type ForecastConfig struct {
	MaxHorizon     int   `mapstructure:"max_horizon"`    // upper bound on requested horizons
	MaxWindows     int   `mapstructure:"max_windows"`    // upper bound on backtest windows
	DefaultLevels  []int `mapstructure:"default_levels"` // confidence levels when a request omits them
	TuningEnabled  bool  `mapstructure:"tuning_enabled"` // hyperparameter search capability for neural models
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", c.HTTPPort)
	}
	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	switch c.UploadBackend {
	case "", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required when upload_backend is redis")
		}
	default:
		return fmt.Errorf("unknown upload_backend %q (expected memory or redis)", c.UploadBackend)
	}
	return nil
}

// Validate validates forecast engine configuration
func (c *ForecastConfig) Validate() error {
	if c.MaxHorizon <= 0 {
		return fmt.Errorf("max_horizon must be positive, got %d", c.MaxHorizon)
	}
	if c.MaxWindows <= 0 {
		return fmt.Errorf("max_windows must be positive, got %d", c.MaxWindows)
	}
	for _, lvl := range c.DefaultLevels {
		if lvl < 1 || lvl > 99 {
			return fmt.Errorf("default_levels entries must be between 1 and 99, got %d", lvl)
		}
	}
	return nil
}
