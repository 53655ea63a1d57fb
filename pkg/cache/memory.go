package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// MemoryCache implements Service with in-process storage. Values are stored
// as JSON bytes so Get semantics match the Redis implementation exactly.
type MemoryCache struct {
	mu            sync.RWMutex
	data          map[string]*memoryItem
	cleanupTicker *time.Ticker
	done          chan struct{}
}

// NewMemoryCache creates an in-memory snapshot cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:          make(map[string]*memoryItem),
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
		done:          make(chan struct{}),
	}

	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expireAt time.Time
	if expiration > 0 {
		expireAt = time.Now().Add(expiration)
	}

	mc.mu.Lock()
	mc.data[key] = &memoryItem{data: data, expireAt: expireAt}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.RLock()
	item, ok := mc.data[key]
	mc.mu.RUnlock()

	if !ok || item.expired() {
		if ok {
			mc.mu.Lock()
			delete(mc.data, key)
			mc.mu.Unlock()
		}
		return ErrCacheMiss
	}

	return json.Unmarshal(item.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, key := range keys {
		delete(mc.data, key)
	}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	for _, key := range keys {
		if item, ok := mc.data[key]; ok && !item.expired() {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) cleanupExpired() {
	for {
		select {
		case <-mc.done:
			return
		case <-mc.cleanupTicker.C:
			mc.mu.Lock()
			for key, item := range mc.data {
				if item.expired() {
					delete(mc.data, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}

// Close stops the cleanup loop.
func (mc *MemoryCache) Close() error {
	mc.cleanupTicker.Stop()
	close(mc.done)
	return nil
}
