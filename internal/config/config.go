// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	DBURL           string        `mapstructure:"DB_URL"`
	IngestToken     string        `mapstructure:"INGEST_TOKEN"`
	SlackWebhookURL string        `mapstructure:"SLACK_WEBHOOK_URL"`
	GithubToken     string        `mapstructure:"GITHUB_TOKEN"`
	RateLimit       int           `mapstructure:"RATE_LIMIT"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("RATE_LIMIT", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", "5m")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.IngestToken == "" {
		return nil, errors.New("INGEST_TOKEN is a required configuration field")
	}
	if cfg.RateLimit <= 0 {
		return nil, errors.New("RATE_LIMIT must be a positive integer")
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, errors.New("RATE_LIMIT_WINDOW must be a positive duration")
	}

	return &cfg, nil
}
