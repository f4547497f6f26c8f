// Package query provides a keyed fetch cache.
//
// Results are kept per key until they go stale or are invalidated. Concurrent
// fetches of the same key share one call to the underlying function.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a shared fetch when no timeout is set.
const DefaultFetchTimeout = 30 * time.Second

// FetchFunc loads the value stored under a key.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache stores fetched values by key.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	group     singleflight.Group
	staleTime time.Duration
	timeout   time.Duration
	logger    *slog.Logger

	now func() time.Time
}

// New creates a cache whose entries stay fresh for staleTime.
func New(staleTime time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		entries:   make(map[string]entry),
		staleTime: staleTime,
		timeout:   DefaultFetchTimeout,
		logger:    logger,
		now:       time.Now,
	}
}

// SetFetchTimeout bounds how long a shared fetch may run. A value <= 0
// restores DefaultFetchTimeout.
func (c *Cache) SetFetchTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultFetchTimeout
	}
	c.timeout = d
}

// Fetch returns the fresh value for key, calling fn when there is none.
// Errors are returned to every waiter and are never cached.
//
// fn runs detached from the callers' cancellation, bounded by the fetch
// timeout. Each caller stops waiting when its own ctx is done.
func (c *Cache) Fetch(ctx context.Context, key string, fn FetchFunc) (any, error) {
	if v, ok := c.fresh(key); ok {
		c.logger.Debug("query cache hit", "key", key)
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		c.logger.Debug("query cache miss", "key", key)
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		start := c.now()
		v, err := fn(fctx)
		if err != nil {
			c.logger.Warn("query failed", "key", key, "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		c.logger.Debug("query settled", "key", key, "duration", c.now().Sub(start))
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("query coalesced", "key", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached value for key so the next Fetch reloads it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// FetchedAt reports when key was last loaded.
func (c *Cache) FetchedAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.fetchedAt, ok
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

// Get is a typed wrapper around Cache.Fetch.
func Get[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
