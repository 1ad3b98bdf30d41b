package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DefaultEvictionInterval is the default interval for periodic cache eviction.
const DefaultEvictionInterval = 1 * time.Minute

// CacheConfig defines configuration for the query cache.
type CacheConfig struct {
	// MaxSize is the maximum number of cached query envelopes.
	MaxSize int `yaml:"max-size" json:"max-size"`
	// TTL is how long a query's results are served from cache.
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// DefaultCacheConfig returns the 1-hour window the search layer contracts.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize: 1000,
		TTL:     time.Hour,
	}
}

// cachedEnvelope stores one cached search response with metadata.
type cachedEnvelope struct {
	response  *Response
	createdAt time.Time
	hitCount  int
}

// CacheStats tracks cache performance counters.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Cache is a TTL+LRU cache of search envelopes keyed by normalized query.
// Duplicate queries inside the TTL window are served from here instead of
// the provider; that staleness is part of the search layer's contract.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cachedEnvelope
	order   []string // LRU order, oldest first
	config  CacheConfig
	stats   CacheStats
}

// NewCache creates a query cache. A zero or negative TTL disables caching.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultCacheConfig().MaxSize
	}
	return &Cache{
		entries: make(map[string]*cachedEnvelope),
		order:   make([]string, 0, cfg.MaxSize),
		config:  cfg,
	}
}

// cacheKey hashes the normalized query string.
func cacheKey(query string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(h[:])[:32]
}

// Get returns the cached envelope for query, or nil when absent or expired.
func (c *Cache) Get(query string) *Response {
	if c.config.TTL <= 0 {
		return nil
	}
	key := cacheKey(query)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.mu.Lock()
		c.stats.Misses++
		c.mu.Unlock()
		return nil
	}

	if time.Since(entry.createdAt) > c.config.TTL {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.stats.Evictions++
		c.stats.Misses++
		c.stats.Size = len(c.entries)
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	entry.hitCount++
	c.stats.Hits++
	c.moveToEnd(key)
	c.mu.Unlock()
	return entry.response
}

// Set stores a result envelope. Nil envelopes are never cached, so a failed
// search never pins the failure for the TTL window.
func (c *Cache) Set(query string, resp *Response) {
	if c.config.TTL <= 0 || resp == nil {
		return
	}
	key := cacheKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.entries) >= c.config.MaxSize && len(c.order) > 0 {
		oldest := c.order[0]
		delete(c.entries, oldest)
		c.order = c.order[1:]
		c.stats.Evictions++
	}

	c.entries[key] = &cachedEnvelope{
		response:  resp,
		createdAt: time.Now(),
	}
	c.order = append(c.order, key)
	c.stats.Size = len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}

// EvictExpired removes every entry past its TTL and reports how many were evicted.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.config.TTL {
			delete(c.entries, key)
			c.removeFromOrder(key)
			evicted++
		}
	}
	c.stats.Evictions += int64(evicted)
	c.stats.Size = len(c.entries)
	return evicted
}

// StartEviction runs EvictExpired on interval until stop is closed.
func (c *Cache) StartEviction(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = DefaultEvictionInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.EvictExpired()
			}
		}
	}()
}

func (c *Cache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
