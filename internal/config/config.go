// Package config provides centralized configuration for both entrypoints.
// Settings load from environment variables with defaults and are validated
// on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration. The ingest CLI uses Collector
// and Upload; the collector service uses Server and Database. Logging is
// shared.
type Config struct {
	Collector CollectorConfig
	Upload    UploadConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
}

// CollectorConfig points the ingest CLI at the remote collector.
type CollectorConfig struct {
	// URL is the collector base URL (default: local dev collector)
	URL string `env:"COLLECTOR_URL" default:"http://127.0.0.1:8080"`

	// Timeout is the per-chunk request timeout (default: 60s)
	Timeout time.Duration `env:"COLLECTOR_TIMEOUT" default:"60s"`
}

// UploadConfig holds upload pipeline settings.
type UploadConfig struct {
	// Site names the account site bound into each chunk's associated data
	Site string `env:"UPLOAD_SITE"`

	// User names the operator bound into each chunk's associated data
	User string `env:"UPLOAD_USER"`

	// BatchSize is the number of rows encrypted per chunk (default: 10000)
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"10000"`

	// SampleRows is how many rows the classification pass reads (default: 200)
	SampleRows int `env:"UPLOAD_SAMPLE_ROWS" default:"200"`
}

// ServerConfig holds the collector's HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the collector's receipt store settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Optional: the collector
	// falls back to the in-memory receipt store when unset.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the pool's maximum connection count (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the pool's minimum connection count (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the collector listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the configuration is coherent. It returns an error
// describing every failure at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Collector.URL == "" {
		errs = append(errs, "COLLECTOR_URL must not be empty")
	}
	if c.Collector.Timeout <= 0 {
		errs = append(errs, "COLLECTOR_TIMEOUT must be positive")
	}
	if c.Upload.BatchSize <= 0 {
		errs = append(errs, "UPLOAD_BATCH_SIZE must be positive")
	}
	if c.Upload.SampleRows <= 0 {
		errs = append(errs, "UPLOAD_SAMPLE_ROWS must be positive")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Sprintf("DB_MIN_CONNS (%d) must be 0..DB_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a log-safe rendering of the config. The database URL is
// masked; nothing else here is secret.
func (c *Config) String() string {
	db := "[unset]"
	if c.Database.URL != "" {
		db = "[MASKED]"
	}
	return fmt.Sprintf("Config{Collector: {URL: %q, Timeout: %s}, Upload: {Site: %q, BatchSize: %d, SampleRows: %d}, Server: {Addr: %q}, Database: {URL: %s}, Logging: {Level: %q, Format: %q}}",
		c.Collector.URL, c.Collector.Timeout,
		c.Upload.Site, c.Upload.BatchSize, c.Upload.SampleRows,
		c.Server.Addr(), db,
		c.Logging.Level, c.Logging.Format)
}
