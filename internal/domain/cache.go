package domain

import (
	"context"
	"time"
)

// AssetCache stores asset catalog snapshots so repeated runs can warm up
// without hitting the exchange.
type AssetCache interface {
	SetAll(ctx context.Context, assets []Asset) error
	Get(ctx context.Context, id string) (Asset, error)
	GetByCode(ctx context.Context, code string) (Asset, error)
	Invalidate(ctx context.Context) error
}

// RateLimiter paces outbound requests.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}
