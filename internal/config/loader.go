package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SWYFTX_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
//
// A missing file is not an error when path is empty: the defaults plus
// environment overrides are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SWYFTX_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject the API key at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Swyftx.BaseURL, "SWYFTX_BASE_URL")
	setStr(&cfg.Swyftx.ApiKey, "SWYFTX_API_KEY")
	setStr(&cfg.Swyftx.UserAgent, "SWYFTX_USER_AGENT")
	setInt(&cfg.Swyftx.RateLimit, "SWYFTX_RATE_LIMIT")
	setInt(&cfg.Swyftx.RateWindowSecs, "SWYFTX_RATE_WINDOW_SECS")

	setStr(&cfg.Redis.Addr, "SWYFTX_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SWYFTX_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SWYFTX_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SWYFTX_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SWYFTX_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SWYFTX_REDIS_TLS_ENABLED")

	setStr(&cfg.Postgres.DSN, "SWYFTX_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SWYFTX_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SWYFTX_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SWYFTX_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SWYFTX_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SWYFTX_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SWYFTX_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SWYFTX_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SWYFTX_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SWYFTX_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.S3.Endpoint, "SWYFTX_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SWYFTX_S3_REGION")
	setStr(&cfg.S3.Bucket, "SWYFTX_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SWYFTX_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SWYFTX_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SWYFTX_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SWYFTX_S3_FORCE_PATH_STYLE")

	setStr(&cfg.LogLevel, "SWYFTX_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}
