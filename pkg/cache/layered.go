package cache

import (
	"context"
	"time"
)

// LayeredCache is a two-level snapshot cache: L1 in-process memory in front
// of L2 Redis. Reads try memory first then fall through to Redis; writes go
// through to both.
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
}

// NewLayeredCache creates a layered cache over an existing Redis cache.
func NewLayeredCache(redisCache *RedisCache) *LayeredCache {
	return &LayeredCache{
		memCache:   NewMemoryCache(),
		redisCache: redisCache,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := lc.redisCache.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	// No L1 backfill on read: the remaining Redis TTL is unknown here and an
	// unbounded memory entry would outlive the snapshot it mirrors.
	return lc.redisCache.Get(ctx, key, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	return lc.redisCache.Exists(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.redisCache.Close()
}
