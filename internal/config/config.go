// Package config defines the top-level configuration for the swyftx toolkit
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SWYFTX_* environment variables.
type Config struct {
	Swyftx   SwyftxConfig   `toml:"swyftx"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	LogLevel string         `toml:"log_level"`
}

// SwyftxConfig holds exchange API parameters and credentials.
type SwyftxConfig struct {
	// BaseURL is the API root; empty selects production.
	BaseURL string `toml:"base_url"`

	// ApiKey is the key exchanged for bearer tokens. Private endpoints
	// require it; public market data does not.
	ApiKey string `toml:"api_key"`

	UserAgent string `toml:"user_agent"`

	// RateLimit is the number of requests allowed per RateWindow seconds
	// when Redis-backed pacing is enabled. Zero disables pacing.
	RateLimit      int `toml:"rate_limit"`
	RateWindowSecs int `toml:"rate_window_secs"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables the
// Redis-backed cache and rate limiter.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds database parameters for the order journal. An empty
// DSN with an empty Host disables journaling.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for the bar
// archiver. An empty Bucket disables archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// Defaults returns the built-in configuration defaults.
func Defaults() Config {
	return Config{
		Swyftx: SwyftxConfig{
			RateLimit:      10,
			RateWindowSecs: 1,
		},
		Redis: RedisConfig{
			PoolSize:   10,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Port:         5432,
			SSLMode:      "disable",
			PoolMaxConns: 4,
			PoolMinConns: 1,
		},
		S3: S3Config{
			Region: "ap-southeast-2",
			UseSSL: true,
		},
		LogLevel: "info",
	}
}

// RedisEnabled reports whether a Redis connection is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// JournalEnabled reports whether the order journal database is configured.
func (c *Config) JournalEnabled() bool {
	return c.Postgres.DSN != "" || c.Postgres.Host != ""
}

// ArchiveEnabled reports whether the S3 bar archiver is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.S3.Bucket != ""
}

// Validate checks the configuration for internally inconsistent values. It
// does not require credentials: a public-data-only run is valid without an
// API key.
func (c *Config) Validate() error {
	var problems []string

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}

	if c.Swyftx.RateLimit < 0 {
		problems = append(problems, "swyftx.rate_limit must not be negative")
	}
	if c.Swyftx.RateLimit > 0 && c.Swyftx.RateWindowSecs <= 0 {
		problems = append(problems, "swyftx.rate_window_secs must be positive when rate_limit is set")
	}

	if c.JournalEnabled() && c.Postgres.DSN == "" {
		if c.Postgres.Database == "" || c.Postgres.User == "" {
			problems = append(problems, "postgres.database and postgres.user are required when postgres.host is set")
		}
	}

	if c.ArchiveEnabled() {
		if c.S3.Region == "" {
			problems = append(problems, "s3.region is required when s3.bucket is set")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			problems = append(problems, "s3.access_key and s3.secret_key are required when s3.bucket is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
