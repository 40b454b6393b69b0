package app

import (
	"context"
	"log/slog"

	s3blob "github.com/ozquant/swyftxgo/internal/blob/s3"
	"github.com/ozquant/swyftxgo/internal/cache/redis"
	"github.com/ozquant/swyftxgo/internal/config"
	"github.com/ozquant/swyftxgo/internal/domain"
	"github.com/ozquant/swyftxgo/internal/store/postgres"
)

// Dependencies bundles the optional infrastructure the commands use. Every
// field may be nil; the exchange client itself is always available.
type Dependencies struct {
	AssetCache  domain.AssetCache
	RateLimiter domain.RateLimiter
	Journal     domain.OrderJournal
	Archiver    *s3blob.BarArchiver
}

// Wire constructs concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	if cfg.RedisEnabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.AssetCache = redis.NewAssetCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		logger.Info("redis connected", slog.String("addr", cfg.Redis.Addr))
	}

	if cfg.JournalEnabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, err
			}
		}

		deps.Journal = postgres.NewOrderJournal(pgClient.Pool())
		logger.Info("order journal enabled")
	}

	if cfg.ArchiveEnabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		deps.Archiver = s3blob.NewBarArchiver(s3blob.NewWriter(s3Client))
		logger.Info("bar archiver enabled", slog.String("bucket", cfg.S3.Bucket))
	}

	return deps, cleanup, nil
}
