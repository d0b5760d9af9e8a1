// Package config loads, defaults and validates the process configuration,
// and builds the configured collaborators (store backend, event transport,
// S3 client) from it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	badgerstore "github.com/archivelab/coral/pkg/store/badger"
)

// Config is the complete process configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Content ContentConfig `mapstructure:"content"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// StoreConfig selects and configures the store backend.
type StoreConfig struct {
	Type   string             `mapstructure:"type" validate:"required,oneof=memory badger"`
	Badger badgerstore.Config `mapstructure:"badger"`
}

// NotifyConfig selects and configures the notification transport.
type NotifyConfig struct {
	Type      string          `mapstructure:"type" validate:"required,oneof=log websocket"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig configures the WebSocket event transport.
type WebSocketConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,uri"`
}

// ContentConfig configures content ingestion sources.
type ContentConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

// S3Config configures the shared S3 client used by the S3 content driver.
// An empty endpoint means real AWS; a custom endpoint (MinIO, Localstack)
// switches the client to path-style addressing.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Load reads the configuration from the given file (or the default search
// locations when path is empty), layers CORAL_* environment variables on
// top, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("coral")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/coral")
	}

	v.SetEnvPrefix("CORAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when no explicit path was given; env vars
		// and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
