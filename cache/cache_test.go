package cache

import (
	"testing"
	"time"

	"ad-funnel-gate/config"
	"ad-funnel-gate/model"
)

func newTestCache(t *testing.T, ttlSeconds int) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{
		Enabled:     true,
		MaxSizeMB:   10,
		TTLSeconds:  ttlSeconds,
		CounterSize: 1000,
	})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCacheBasicOperations(t *testing.T) {
	c := newTestCache(t, 60)

	t.Run("Set_and_Get", func(t *testing.T) {
		if !c.Set("role:u1", "developer", 1) {
			t.Error("Failed to set value in cache")
		}
		c.Wait()

		got, found := c.Get("role:u1")
		if !found {
			t.Fatal("Value not found in cache")
		}
		if got != "developer" {
			t.Errorf("Expected developer, got %v", got)
		}
	})

	t.Run("Get_NonExistent", func(t *testing.T) {
		if _, found := c.Get("nonexistent_key"); found {
			t.Error("Expected key not to be found")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("delete_key", "value", 1)
		c.Wait()
		c.Delete("delete_key")

		if _, found := c.Get("delete_key"); found {
			t.Error("Value should not exist after deletion")
		}
	})
}

func TestCacheLinks(t *testing.T) {
	c := newTestCache(t, 60)

	link := model.ShortLink{ID: "1", ShortCode: "abc123", OriginalURL: "https://example.com"}
	c.SetLink(link)
	c.Wait()

	got, ok := c.GetLink("abc123")
	if !ok {
		t.Fatal("Expected cached link")
	}
	if got.OriginalURL != link.OriginalURL {
		t.Errorf("Expected %s, got %s", link.OriginalURL, got.OriginalURL)
	}

	c.DeleteLink("abc123")
	if _, ok := c.GetLink("abc123"); ok {
		t.Error("Expected link to be evicted")
	}
}

func TestCacheTTL(t *testing.T) {
	c := newTestCache(t, 1)

	c.Set("ttl_key", "ttl_value", 1)
	c.Wait()

	if _, found := c.Get("ttl_key"); !found {
		t.Error("Value should exist immediately after setting")
	}

	time.Sleep(1200 * time.Millisecond)

	if _, found := c.Get("ttl_key"); found {
		t.Error("Value should have expired after TTL")
	}
}

func TestCacheMetrics(t *testing.T) {
	c := newTestCache(t, 60)

	c.Set("key1", "value1", 1)
	c.Wait()
	c.Get("key1")
	c.Get("key3")

	metrics := c.GetMetricsSnapshot()
	if !metrics.Enabled {
		t.Error("Expected metrics to be enabled")
	}
	if metrics.TTLSeconds != 60 {
		t.Errorf("Expected TTL 60 seconds, got %d", metrics.TTLSeconds)
	}
	t.Logf("Cache metrics: Hits=%d, Misses=%d, HitRatio=%.2f", metrics.Hits, metrics.Misses, metrics.HitRatio)
}

func TestDisabledCache(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false, TTLSeconds: 5})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.Set("key", "value", 1) {
		t.Error("Set should return false on a disabled cache")
	}
	c.Wait()
	if _, found := c.Get("key"); found {
		t.Error("Get should miss on a disabled cache")
	}

	// Should not panic
	c.Delete("key")
	c.DeleteLink("code")
	c.Close()

	if m := c.GetMetricsSnapshot(); m.Enabled || m.Hits != 0 {
		t.Error("Disabled cache should report zero metrics")
	}
}
