// Package config provides configuration management for the operator console.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Backend Backend       `mapstructure:"backend"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Backend holds connection settings for the management backend.
type Backend struct {
	// BaseURL is the HTTP endpoint for one-shot calls.
	BaseURL string `mapstructure:"base_url"`
	// WSBaseURL is the websocket endpoint for console and metrics streams.
	WSBaseURL      string        `mapstructure:"ws_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig holds live-session settings.
type SessionConfig struct {
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NEXUSVM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Backend
	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.ws_base_url", "ws://localhost:8080")
	v.SetDefault("backend.request_timeout", "30s")

	// Session
	v.SetDefault("session.handshake_timeout", "10s")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
