package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
)

// Loader produces a fresh chart for one timeframe. It runs at most once per
// timeframe at any instant, however many callers arrive concurrently.
type Loader func(ctx context.Context) (*models.ChartResponse, error)

// Outcome describes how a GetOrRefresh call was satisfied.
type Outcome int

const (
	// OutcomeHit means a fresh cached entry was returned without loading.
	OutcomeHit Outcome = iota
	// OutcomeRefreshed means this call's flight invoked the loader.
	OutcomeRefreshed
	// OutcomeCoalesced means the call was attached to another caller's
	// in-flight load and shared its result.
	OutcomeCoalesced
)

type entry struct {
	response  *models.ChartResponse
	expiresAt time.Time
}

func (e *entry) fresh(now time.Time) bool {
	return e != nil && now.Before(e.expiresAt)
}

// ChartCache is a per-timeframe TTL cache with single-flight refresh. Entries
// for different timeframes are independent: the map lock is held only for
// lookups and swaps, never across a loader call, and flights are keyed per
// timeframe.
type ChartCache struct {
	mu      sync.RWMutex
	entries map[drepo.Timeframe]*entry
	group   singleflight.Group

	now func() time.Time // test hook
}

// NewChartCache creates an empty cache. One instance is constructed at
// service start and owned by the service; there is no ambient shared state.
func NewChartCache() *ChartCache {
	return &ChartCache{
		entries: make(map[drepo.Timeframe]*entry),
		now:     time.Now,
	}
}

// GetOrRefresh returns the cached chart for tf when fresh, otherwise invokes
// loader exactly once across all concurrent callers for tf and caches the
// result for ttl. A failed load caches nothing: any existing expired entry
// stays as-is and the error is propagated to every coalesced caller, so the
// next call may retry immediately.
func (c *ChartCache) GetOrRefresh(ctx context.Context, tf drepo.Timeframe, ttl time.Duration, loader Loader) (*models.ChartResponse, Outcome, error) {
	if e := c.lookup(tf); e.fresh(c.now()) {
		return e.response, OutcomeHit, nil
	}

	v, err, shared := c.group.Do(string(tf), func() (interface{}, error) {
		// A caller queued behind a just-finished flight must observe its
		// result instead of triggering another upstream fetch.
		if e := c.lookup(tf); e.fresh(c.now()) {
			return e.response, nil
		}

		resp, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		c.store(tf, &entry{response: resp, expiresAt: c.now().Add(ttl)})
		return resp, nil
	})

	outcome := OutcomeRefreshed
	if shared {
		outcome = OutcomeCoalesced
	}
	if err != nil {
		return nil, outcome, err
	}
	return v.(*models.ChartResponse), outcome, nil
}

// Put stores resp for tf directly, expiring after ttl. A non-positive ttl
// stores an already-expired entry, useful for warmup seeding.
func (c *ChartCache) Put(tf drepo.Timeframe, resp *models.ChartResponse, ttl time.Duration) {
	c.store(tf, &entry{response: resp, expiresAt: c.now().Add(ttl)})
}

// Stale returns whatever entry exists for tf, expired or not. Callers opting
// into stale fallback use it after a failed refresh.
func (c *ChartCache) Stale(tf drepo.Timeframe) (*models.ChartResponse, bool) {
	e := c.lookup(tf)
	if e == nil {
		return nil, false
	}
	return e.response, true
}

// Invalidate drops the entry for tf.
func (c *ChartCache) Invalidate(tf drepo.Timeframe) {
	c.mu.Lock()
	delete(c.entries, tf)
	c.mu.Unlock()
}

func (c *ChartCache) lookup(tf drepo.Timeframe) *entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[tf]
}

func (c *ChartCache) store(tf drepo.Timeframe, e *entry) {
	c.mu.Lock()
	c.entries[tf] = e
	c.mu.Unlock()
}
