package cache

import (
	"time"

	"ad-funnel-gate/config"
	"ad-funnel-gate/model"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

const linkPrefix = "link:"

// Cache is an in-process read cache for short links and resolved roles
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a cache from config. A disabled cache is returned as a no-op
// instance so callers never need a nil check.
func New(cfg config.CacheConfig) (*Cache, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if !cfg.Enabled {
		log.Info().Msg("Cache disabled")
		return &Cache{ttl: ttl}, nil
	}

	// MaxCost is in bytes
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize),
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Int("counter_size", cfg.CounterSize).
		Msg("Cache initialized successfully")

	return &Cache{client: client, ttl: ttl}, nil
}

// Get retrieves a value from the cache
func (c *Cache) Get(key string) (interface{}, bool) {
	if c.client == nil {
		return nil, false
	}
	return c.client.Get(key)
}

// Set stores a value with the configured TTL. Sets are applied
// asynchronously; call Wait to make them visible.
func (c *Cache) Set(key string, value interface{}, cost int64) bool {
	if c.client == nil {
		return false
	}
	return c.client.SetWithTTL(key, value, cost, c.ttl)
}

// Wait blocks until buffered sets are applied
func (c *Cache) Wait() {
	if c.client != nil {
		c.client.Wait()
	}
}

// Delete removes a key from the cache
func (c *Cache) Delete(key string) {
	if c.client == nil {
		return
	}
	c.client.Del(key)
}

// GetLink returns a cached short link by code
func (c *Cache) GetLink(code string) (model.ShortLink, bool) {
	v, ok := c.Get(linkPrefix + code)
	if !ok {
		return model.ShortLink{}, false
	}
	link, ok := v.(model.ShortLink)
	return link, ok
}

// SetLink caches a short link under its code
func (c *Cache) SetLink(link model.ShortLink) bool {
	cost := int64(len(link.OriginalURL) + len(link.ShortCode) + len(link.ID) + 64)
	return c.Set(linkPrefix+link.ShortCode, link, cost)
}

// DeleteLink evicts a short link
func (c *Cache) DeleteLink(code string) {
	c.Delete(linkPrefix + code)
}

// Close cleanly shuts down the cache
func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
		log.Info().Msg("Cache closed")
	}
}

// MetricsSnapshot is a point-in-time copy of the cache counters
type MetricsSnapshot struct {
	Enabled      bool    `json:"enabled"`
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	KeysAdded    uint64  `json:"keys_added"`
	KeysEvicted  uint64  `json:"keys_evicted"`
	SetsDropped  uint64  `json:"sets_dropped"`
	SetsRejected uint64  `json:"sets_rejected"`
	HitRatio     float64 `json:"hit_ratio"`
	TTLSeconds   int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{TTLSeconds: int(c.ttl.Seconds())}
	}

	m := c.client.Metrics
	return MetricsSnapshot{
		Enabled:      true,
		Hits:         m.Hits(),
		Misses:       m.Misses(),
		KeysAdded:    m.KeysAdded(),
		KeysEvicted:  m.KeysEvicted(),
		SetsDropped:  m.SetsDropped(),
		SetsRejected: m.SetsRejected(),
		HitRatio:     m.Ratio(),
		TTLSeconds:   int(c.ttl.Seconds()),
	}
}
