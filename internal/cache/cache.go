// Package cache provides a bounded in-memory TTL cache with get-or-fetch
// semantics. Three instances with distinct policies back the bridge: a
// long-lived reference cache for the specification document, a medium-lived
// report cache for pinned proxy responses, and a generic default cache for
// GET tool invocations.
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// entry wraps a cached value with its absolute expiry.
type entry struct {
	data   any
	expiry time.Time
}

// Options configures a ResponseCache instance.
type Options struct {
	TTL             time.Duration // default TTL applied when Set is called with ttl <= 0
	MaxEntries      int           // capacity; <= 0 means 500
	Enabled         bool          // disabled caches turn Set into a no-op
	CleanupInterval time.Duration // > 0 starts a janitor goroutine; stop via Dispose
}

// ResponseCache is a bounded mapping from string key to arbitrary
// JSON-serializable value with per-entry TTL.
// Thread-safe with sync.RWMutex.
type ResponseCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	enabled    bool

	janitorStop chan struct{}
	janitorOnce sync.Once
}

// New creates a ResponseCache from the given options. When a cleanup
// interval is configured the janitor starts immediately; the caller owns
// its lifecycle and must call Dispose on shutdown.
func New(opts Options) *ResponseCache {
	max := opts.MaxEntries
	if max <= 0 {
		max = 500
	}
	c := &ResponseCache{
		items:      make(map[string]entry),
		ttl:        opts.TTL,
		maxEntries: max,
		enabled:    opts.Enabled,
	}
	if opts.CleanupInterval > 0 {
		c.janitorStop = make(chan struct{})
		go c.janitor(opts.CleanupInterval)
	}
	return c
}

// GenerateKey builds a deterministic cache key from an HTTP method, URL and
// parameter bag. Params are sorted by key before serialization so argument
// order never affects cache identity.
func GenerateKey(method, url string, params map[string]any) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteString(":")
	b.WriteString(url)
	if len(params) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(":")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(k)
		b.WriteString("=")
		if raw, err := json.Marshal(params[k]); err == nil {
			b.Write(raw)
		}
	}
	return b.String()
}

// Get returns a cached value if found and not expired. A present-but-expired
// entry counts as a miss and is deleted as a side effect.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.data, true
}

// Set stores a value with the given TTL (the instance default when ttl <= 0).
// At capacity the entry with the nearest expiry is evicted first. No-op when
// the cache is disabled.
func (c *ResponseCache) Set(key string, data any, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		data:   data,
		expiry: time.Now().Add(ttl),
	}

	// If key already exists, update in place (no capacity change)
	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictNearestExpiry()
	}

	c.items[key] = e
}

// GetOrFetch returns the cached value on hit; on miss it invokes producer and
// stores the result before returning it, but only when the result is non-nil.
// Concurrent misses on the same key may each invoke the producer.
func (c *ResponseCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := producer(ctx)
	if err != nil {
		return nil, err
	}
	if v != nil {
		c.Set(key, v, ttl)
	}
	return v, nil
}

// Cleanup removes all expired entries.
func (c *ResponseCache) Cleanup() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.items {
		if now.After(e.expiry) {
			delete(c.items, key)
		}
	}
}

// Len returns the current number of entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Dispose stops the janitor goroutine, if one was started. Safe to call
// multiple times.
func (c *ResponseCache) Dispose() {
	if c.janitorStop == nil {
		return
	}
	c.janitorOnce.Do(func() {
		close(c.janitorStop)
	})
}

// janitor periodically sweeps expired entries until Dispose is called.
func (c *ResponseCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.janitorStop:
			return
		}
	}
}

// evictNearestExpiry removes the entry closest to expiring. Must be called
// with mu held.
func (c *ResponseCache) evictNearestExpiry() {
	var victim string
	var victimExpiry time.Time

	for key, e := range c.items {
		if victim == "" || e.expiry.Before(victimExpiry) {
			victim = key
			victimExpiry = e.expiry
		}
	}

	if victim != "" {
		delete(c.items, victim)
	}
}
