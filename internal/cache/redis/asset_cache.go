package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ozquant/swyftxgo/internal/domain"
)

const assetTTL = 30 * time.Minute

// AssetCache implements domain.AssetCache using Redis with JSON-serialized
// asset snapshots and a secondary code-to-id index.
//
// Key schema:
//
//	asset:{id}         - JSON-encoded asset
//	asset:code:{code}  - string value of the asset id
//	asset:ids          - set of all cached asset ids
type AssetCache struct {
	rdb *redis.Client
}

// NewAssetCache creates an AssetCache backed by the given Client.
func NewAssetCache(c *Client) *AssetCache {
	return &AssetCache{rdb: c.Underlying()}
}

func assetKey(id string) string       { return "asset:" + id }
func assetCodeKey(code string) string { return "asset:code:" + code }

const assetIDsKey = "asset:ids"

// SetAll stores a full catalog snapshot. Both indexes are written in one
// pipeline so a reader never sees a catalog with only one of them populated.
func (ac *AssetCache) SetAll(ctx context.Context, assets []domain.Asset) error {
	pipe := ac.rdb.TxPipeline()
	pipe.Del(ctx, assetIDsKey)

	for _, a := range assets {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("redis: marshal asset %s: %w", a.ID, err)
		}
		pipe.Set(ctx, assetKey(a.ID), data, assetTTL)
		pipe.Set(ctx, assetCodeKey(a.Code), a.ID, assetTTL)
		pipe.SAdd(ctx, assetIDsKey, a.ID)
	}
	pipe.Expire(ctx, assetIDsKey, assetTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set assets: %w", err)
	}
	return nil
}

// Get retrieves an asset by its id.
// It returns domain.ErrNotFound when the key does not exist.
func (ac *AssetCache) Get(ctx context.Context, id string) (domain.Asset, error) {
	data, err := ac.rdb.Get(ctx, assetKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Asset{}, domain.ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("redis: get asset %s: %w", id, err)
	}

	var asset domain.Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return domain.Asset{}, fmt.Errorf("redis: unmarshal asset %s: %w", id, err)
	}
	return asset, nil
}

// GetByCode looks an asset up through the code index.
func (ac *AssetCache) GetByCode(ctx context.Context, code string) (domain.Asset, error) {
	id, err := ac.rdb.Get(ctx, assetCodeKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Asset{}, domain.ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("redis: get asset by code %s: %w", code, err)
	}
	return ac.Get(ctx, id)
}

// Invalidate drops the whole catalog snapshot.
func (ac *AssetCache) Invalidate(ctx context.Context) error {
	ids, err := ac.rdb.SMembers(ctx, assetIDsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: invalidate assets: %w", err)
	}

	pipe := ac.rdb.TxPipeline()
	for _, id := range ids {
		asset, err := ac.Get(ctx, id)
		if err == nil {
			pipe.Del(ctx, assetCodeKey(asset.Code))
		}
		pipe.Del(ctx, assetKey(id))
	}
	pipe.Del(ctx, assetIDsKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate assets: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.AssetCache = (*AssetCache)(nil)
