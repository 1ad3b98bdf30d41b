package search

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func testEnvelope(title string) *Response {
	return &Response{
		Web: Web{Results: []Result{{Title: title, Description: "desc", URL: "https://example.com"}}},
	}
}

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 10, TTL: time.Hour})

	if got := cache.Get("hello"); got != nil {
		t.Error("expected miss on empty cache")
	}

	cache.Set("hello", testEnvelope("A"))

	got := cache.Get("hello")
	if got == nil {
		t.Fatal("expected hit after set")
	}
	if got.Web.Results[0].Title != "A" {
		t.Errorf("wrong envelope: %+v", got)
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit / 1 miss", stats)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 10, TTL: time.Hour})
	cache.Set("Hello World", testEnvelope("A"))

	if cache.Get("  hello world  ") == nil {
		t.Error("expected hit for case/whitespace variant of the same query")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 10, TTL: 10 * time.Millisecond})
	cache.Set("hello", testEnvelope("A"))

	time.Sleep(25 * time.Millisecond)

	if cache.Get("hello") != nil {
		t.Error("expected expired entry to miss")
	}
	if stats := cache.Stats(); stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestCacheLRUEviction(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 3, TTL: time.Hour})
	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("q%d", i), testEnvelope(fmt.Sprintf("T%d", i)))
	}

	// Touch q0 so q1 becomes the eviction candidate.
	if cache.Get("q0") == nil {
		t.Fatal("expected q0 hit")
	}

	cache.Set("q3", testEnvelope("T3"))

	if cache.Get("q0") == nil {
		t.Error("recently used q0 should survive")
	}
	if cache.Get("q1") != nil {
		t.Error("least recently used q1 should be evicted")
	}
}

func TestCacheNeverStoresNil(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 10, TTL: time.Hour})
	cache.Set("hello", nil)
	if cache.Stats().Size != 0 {
		t.Error("nil envelope must not be cached")
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 10, TTL: 0})
	cache.Set("hello", testEnvelope("A"))
	if cache.Get("hello") != nil {
		t.Error("zero TTL must disable caching")
	}
}

func TestCacheEvictExpired(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 10, TTL: 10 * time.Millisecond})
	cache.Set("a", testEnvelope("A"))
	cache.Set("b", testEnvelope("B"))

	time.Sleep(25 * time.Millisecond)

	if evicted := cache.EvictExpired(); evicted != 2 {
		t.Errorf("evicted = %d, want 2", evicted)
	}
	if cache.Stats().Size != 0 {
		t.Errorf("size = %d, want 0", cache.Stats().Size)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache(CacheConfig{MaxSize: 100, TTL: time.Hour})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("q%d-%d", n, j%5)
				cache.Set(key, testEnvelope(key))
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Stats().Size == 0 {
		t.Error("expected entries after concurrent writes")
	}
}
