package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"liftcast/internal/errors"
)

// Data source kinds
const (
	SourceFile      = "file"
	SourcePostgres  = "postgres"
	SourceSynthetic = "synthetic"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Model    ModelConfig
	Logging  LoggingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig selects and describes the raw log store
type DataConfig struct {
	Source        string
	LogFile       string
	LayoutFile    string
	SyntheticDays int
	SyntheticSeed int64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ModelConfig holds prediction settings
type ModelConfig struct {
	Timezone               string
	AdviceEntropyThreshold float64
	RefreshInterval        time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Data:     *loadDataConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Model:    *loadModelConfig(),
		Logging:  LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	logFile := getEnvOrDefault("LOG_FILE", "")

	// Without an explicit source, a configured log file wins over synthetic data.
	source := SourceSynthetic
	if logFile != "" {
		source = SourceFile
	}

	return &DataConfig{
		Source:        strings.ToLower(getEnvOrDefault("DATA_SOURCE", source)),
		LogFile:       logFile,
		LayoutFile:    getEnvOrDefault("LAYOUT_FILE", ""),
		SyntheticDays: getEnvIntOrDefault("SYNTHETIC_DAYS", 30),
		SyntheticSeed: int64(getEnvIntOrDefault("SYNTHETIC_SEED", 42)),
	}
}

func loadModelConfig() *ModelConfig {
	return &ModelConfig{
		Timezone:               getEnvOrDefault("TIMEZONE", "Asia/Rangoon"),
		AdviceEntropyThreshold: getEnvFloatOrDefault("ADVICE_ENTROPY_THRESHOLD", 0.5),
		RefreshInterval:        getEnvDurationOrDefault("REFRESH_INTERVAL", 0),
	}
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFile:
		if config.Data.LogFile == "" {
			return errors.ConfigInvalid("LOG_FILE is required for the file data source")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres data source")
		}
	case SourceSynthetic:
		if config.Data.SyntheticDays <= 0 {
			return errors.ConfigInvalid("SYNTHETIC_DAYS must be positive")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown DATA_SOURCE %q", config.Data.Source))
	}

	if _, err := time.LoadLocation(config.Model.Timezone); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("unknown TIMEZONE %q", config.Model.Timezone))
	}
	if config.Model.AdviceEntropyThreshold < 0 {
		return errors.ConfigInvalid("ADVICE_ENTROPY_THRESHOLD must not be negative")
	}
	if config.Model.RefreshInterval < 0 {
		return errors.ConfigInvalid("REFRESH_INTERVAL must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
