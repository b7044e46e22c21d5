// Package config provides configuration loading and management for Semscore.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Semscore configuration
type Config struct {
	NATS     NATSConfig     `yaml:"nats"`
	Postgres PostgresConfig `yaml:"postgres"`
	Ingester IngesterConfig `yaml:"ingester"`
	API      APIConfig      `yaml:"api"`
	Source   SourceConfig   `yaml:"source"`
	Log      LogConfig      `yaml:"log"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
}

// PostgresConfig configures the assessment database connection
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
	// SSLMode is passed through to lib/pq (default: disable)
	SSLMode string `yaml:"ssl_mode"`
	// MaxOpenConns caps the connection pool size
	MaxOpenConns int `yaml:"max_open_conns"`
}

// IngesterConfig configures the assessment-ingester component
type IngesterConfig struct {
	// Stream is the JetStream stream assessments are consumed from
	Stream string `yaml:"stream"`
	// Subject is the subject filter for assessment messages
	Subject string `yaml:"subject"`
	// Consumer is the durable consumer name
	Consumer string `yaml:"consumer"`
	// AckWait is how long JetStream waits before redelivering
	AckWait string `yaml:"ack_wait"`
}

// APIConfig configures the score-api component
type APIConfig struct {
	// Prefix is the HTTP route prefix
	Prefix string `yaml:"prefix"`
	// APIKey guards the save endpoint (empty disables saving)
	APIKey string `yaml:"api_key"`
	// CacheTTL is the read cache lifetime ("0" disables caching)
	CacheTTL string `yaml:"cache_ttl"`
}

// SourceConfig configures the file-source drop directory component
type SourceConfig struct {
	// Enabled turns the drop directory watcher on
	Enabled bool `yaml:"enabled"`
	// DropDir is the watched directory
	DropDir string `yaml:"drop_dir"`
	// Patterns lists glob patterns for assessment document files
	Patterns []string `yaml:"patterns"`
	// Debounce is the watcher debounce delay
	Debounce string `yaml:"debounce"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is the slog level (debug, info, warn, error)
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Username:     "postgres",
			Password:     "",
			DBName:       "semscore",
			SSLMode:      "disable",
			MaxOpenConns: 16,
		},
		Ingester: IngesterConfig{
			Stream:   "QUALITY",
			Subject:  "quality.assessment.received",
			Consumer: "assessment-ingester",
			AckWait:  "30s",
		},
		API: APIConfig{
			Prefix:   "api/v1",
			APIKey:   "",
			CacheTTL: "30s",
		},
		Source: SourceConfig{
			Enabled:  false,
			DropDir:  "",
			Patterns: []string{"**/*.json"},
			Debounce: "500ms",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if c.Postgres.DBName == "" {
		return fmt.Errorf("postgres.db_name is required")
	}
	if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
		return fmt.Errorf("postgres.port must be between 1 and 65535")
	}
	if c.Ingester.AckWait != "" {
		if _, err := time.ParseDuration(c.Ingester.AckWait); err != nil {
			return fmt.Errorf("ingester.ack_wait is not a duration: %w", err)
		}
	}
	if c.API.CacheTTL != "" {
		if _, err := time.ParseDuration(c.API.CacheTTL); err != nil {
			return fmt.Errorf("api.cache_ttl is not a duration: %w", err)
		}
	}
	if c.Source.Debounce != "" {
		if _, err := time.ParseDuration(c.Source.Debounce); err != nil {
			return fmt.Errorf("source.debounce is not a duration: %w", err)
		}
	}
	if c.Source.Enabled && c.Source.DropDir == "" {
		return fmt.Errorf("source.drop_dir is required when the file source is enabled")
	}
	return nil
}

// LoadFromBytes parses YAML configuration over the defaults
func LoadFromBytes(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Postgres
	if other.Postgres.Host != "" {
		c.Postgres.Host = other.Postgres.Host
	}
	if other.Postgres.Port != 0 {
		c.Postgres.Port = other.Postgres.Port
	}
	if other.Postgres.Username != "" {
		c.Postgres.Username = other.Postgres.Username
	}
	if other.Postgres.Password != "" {
		c.Postgres.Password = other.Postgres.Password
	}
	if other.Postgres.DBName != "" {
		c.Postgres.DBName = other.Postgres.DBName
	}
	if other.Postgres.SSLMode != "" {
		c.Postgres.SSLMode = other.Postgres.SSLMode
	}
	if other.Postgres.MaxOpenConns != 0 {
		c.Postgres.MaxOpenConns = other.Postgres.MaxOpenConns
	}

	// Ingester
	if other.Ingester.Stream != "" {
		c.Ingester.Stream = other.Ingester.Stream
	}
	if other.Ingester.Subject != "" {
		c.Ingester.Subject = other.Ingester.Subject
	}
	if other.Ingester.Consumer != "" {
		c.Ingester.Consumer = other.Ingester.Consumer
	}
	if other.Ingester.AckWait != "" {
		c.Ingester.AckWait = other.Ingester.AckWait
	}

	// API
	if other.API.Prefix != "" {
		c.API.Prefix = other.API.Prefix
	}
	if other.API.APIKey != "" {
		c.API.APIKey = other.API.APIKey
	}
	if other.API.CacheTTL != "" {
		c.API.CacheTTL = other.API.CacheTTL
	}

	// Source
	if other.Source.Enabled {
		c.Source.Enabled = true
	}
	if other.Source.DropDir != "" {
		c.Source.DropDir = other.Source.DropDir
	}
	if len(other.Source.Patterns) > 0 {
		c.Source.Patterns = other.Source.Patterns
	}
	if other.Source.Debounce != "" {
		c.Source.Debounce = other.Source.Debounce
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
