package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestCache(maxEntries int) *ResponseCache {
	return New(Options{
		TTL:        time.Minute,
		MaxEntries: maxEntries,
		Enabled:    true,
	})
}

func TestSetGet(t *testing.T) {
	c := newTestCache(10)

	c.Set("k", "v", time.Minute)

	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if v != "v" {
		t.Errorf("expected v, got %v", v)
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(10)

	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestExpiredEntryIsMissAndRemoved(t *testing.T) {
	c := newTestCache(10)

	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to be a miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry removed, len=%d", c.Len())
	}
}

func TestSetDefaultTTL(t *testing.T) {
	c := newTestCache(10)

	// ttl <= 0 falls back to the instance default (1 minute here)
	c.Set("k", "v", 0)

	if _, ok := c.Get("k"); !ok {
		t.Error("expected entry stored with default TTL")
	}
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New(Options{TTL: time.Minute, Enabled: false})

	c.Set("k", "v", time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expected disabled cache to store nothing")
	}
	if c.Len() != 0 {
		t.Errorf("expected len 0, got %d", c.Len())
	}
}

func TestEvictNearestExpiry(t *testing.T) {
	c := newTestCache(2)

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	c.Set("new", 3, time.Minute)

	if c.Len() != 2 {
		t.Fatalf("expected len 2 after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("short"); ok {
		t.Error("expected nearest-expiry entry to be evicted")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("expected long-lived entry to survive")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("expected new entry to be stored")
	}
}

func TestUpdateInPlaceDoesNotEvict(t *testing.T) {
	c := newTestCache(2)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("a", 3, time.Minute)

	if c.Len() != 2 {
		t.Errorf("expected len 2 after update, got %d", c.Len())
	}
	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("expected updated value 3, got %v", v)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to survive an in-place update of a")
	}
}

func TestGenerateKeyOrderIndependent(t *testing.T) {
	k1 := GenerateKey("get", "http://api/items", map[string]any{"a": 1, "b": "x"})
	k2 := GenerateKey("GET", "http://api/items", map[string]any{"b": "x", "a": 1})

	if k1 != k2 {
		t.Errorf("expected identical keys regardless of param order:\n%s\n%s", k1, k2)
	}
}

func TestGenerateKeyDistinguishesParams(t *testing.T) {
	k1 := GenerateKey("GET", "http://api/items", map[string]any{"a": 1})
	k2 := GenerateKey("GET", "http://api/items", map[string]any{"a": 2})

	if k1 == k2 {
		t.Error("expected different params to produce different keys")
	}
}

func TestGetOrFetchCachesProducedValue(t *testing.T) {
	c := newTestCache(10)
	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		return "produced", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrFetch(context.Background(), "k", time.Minute, producer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "produced" {
			t.Errorf("expected produced, got %v", v)
		}
	}

	if calls != 1 {
		t.Errorf("expected producer invoked once, got %d", calls)
	}
}

func TestGetOrFetchDoesNotCacheNil(t *testing.T) {
	c := newTestCache(10)
	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		return nil, nil
	}

	c.GetOrFetch(context.Background(), "k", time.Minute, producer)
	c.GetOrFetch(context.Background(), "k", time.Minute, producer)

	if calls != 2 {
		t.Errorf("expected nil results never cached, producer calls=%d", calls)
	}
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	c := newTestCache(10)
	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("boom")
	}

	if _, err := c.GetOrFetch(context.Background(), "k", time.Minute, producer); err == nil {
		t.Fatal("expected error from producer")
	}
	c.GetOrFetch(context.Background(), "k", time.Minute, producer)

	if calls != 2 {
		t.Errorf("expected failed results never cached, producer calls=%d", calls)
	}
}

func TestCleanupRemovesOnlyExpired(t *testing.T) {
	c := newTestCache(10)

	c.Set("old", 1, time.Millisecond)
	c.Set("fresh", 2, time.Hour)
	time.Sleep(5 * time.Millisecond)

	c.Cleanup()

	if c.Len() != 1 {
		t.Errorf("expected 1 entry after cleanup, got %d", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("expected fresh entry to survive cleanup")
	}
}

func TestJanitorSweepsAndDisposeStops(t *testing.T) {
	c := New(Options{
		TTL:             time.Minute,
		Enabled:         true,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer c.Dispose()

	c.Set("k", 1, time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Error("expected janitor to sweep expired entry")
	}

	// Dispose twice must not panic
	c.Dispose()
	c.Dispose()
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%20)
				c.Set(key, n, time.Minute)
				c.Get(key)
				c.GetOrFetch(context.Background(), key, time.Minute, func(ctx context.Context) (any, error) {
					return n, nil
				})
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("expected capacity respected, len=%d", c.Len())
	}
}
