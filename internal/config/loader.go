package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")                // Current directory
		v.AddConfigPath("./configs")        // Project configs directory
		v.AddConfigPath("/etc/forecastlab") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("FORECASTLAB")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8000)

	// Store defaults
	v.SetDefault("store.upload_backend", "memory")
	v.SetDefault("store.upload_ttl", "0")
	v.SetDefault("store.config_store_path", "./config_store.json")

	// Forecast defaults
	v.SetDefault("forecast.max_horizon", 365)
	v.SetDefault("forecast.max_windows", 20)
	v.SetDefault("forecast.default_levels", []int{80, 90})
	v.SetDefault("forecast.tuning_enabled", true)
	v.SetDefault("forecast.max_upload_bytes", 10*1024*1024)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 8000,
		},
		Store: StoreConfig{
			UploadBackend:   "memory",
			UploadTTL:       0 * time.Second,
			ConfigStorePath: "./config_store.json",
		},
		Forecast: ForecastConfig{
			MaxHorizon:     365,
			MaxWindows:     20,
			DefaultLevels:  []int{80, 90},
			TuningEnabled:  true,
			MaxUploadBytes: 10 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
