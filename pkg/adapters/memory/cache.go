package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/tapevm/pkg/domain"
	"gopkg.in/tomb.v2"
)

type cacheEntry struct {
	result  domain.CachedResult
	expires time.Time // zero means never
}

// Cache implements ports.ResultCache in memory.
// Expired entries are invisible to Get immediately and are removed by a
// background janitor when one is configured with WithJanitor.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time

	interval time.Duration
	tomb     tomb.Tomb
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithJanitor enables periodic removal of expired entries.
func WithJanitor(interval time.Duration) CacheOption {
	return func(c *Cache) {
		c.interval = interval
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a cache. Call Close to stop the janitor.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.interval > 0 {
		c.tomb.Go(c.janitor)
	}

	return c
}

// Get returns a copy of the cached result.
func (c *Cache) Get(ctx context.Context, key string) (*domain.CachedResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil, domain.ErrCacheMiss
	}
	res := e.result
	return &res, nil
}

// Set stores a copy of result.
func (c *Cache) Set(ctx context.Context, key string, result *domain.CachedResult, ttl time.Duration) error {
	e := cacheEntry{result: *result}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Close stops the janitor, if any.
func (c *Cache) Close() {
	if c.interval <= 0 {
		return
	}
	c.tomb.Kill(nil)
	_ = c.tomb.Wait()
}

func (c *Cache) expired(e cacheEntry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *Cache) janitor() error {
	for {
		select {
		case <-time.After(c.interval):
		case <-c.tomb.Dying():
			return tomb.ErrDying
		}

		c.Sweep()
	}
}
