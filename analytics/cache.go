package analytics

import (
	"context"
	"sync"
	"time"
)

// summaryCache keeps the last aggregated summary for a short TTL so that a
// burst of dashboard requests does not rerun the aggregation each time.
type summaryCache struct {
	mu      sync.RWMutex
	summary *Summary
	fetched time.Time
	ttl     time.Duration
	load    func(ctx context.Context) (*Summary, error)
}

func newSummaryCache(ttl time.Duration, load func(ctx context.Context) (*Summary, error)) *summaryCache {
	return &summaryCache{ttl: ttl, load: load}
}

func (c *summaryCache) valid() bool {
	return c.summary != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *summaryCache) Invalidate() {
	c.mu.Lock()
	c.summary = nil
	c.mu.Unlock()
}

// Get returns the cached summary, reloading it when stale. It tries a read
// lock first and only takes the write lock when a reload is needed.
func (c *summaryCache) Get(ctx context.Context) (*Summary, error) {
	c.mu.RLock()
	if c.valid() {
		s := c.summary
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.summary, nil
	}
	s, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.summary = s
	c.fetched = time.Now()
	return s, nil
}
