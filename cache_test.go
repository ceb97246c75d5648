package authorsite

import (
	"fmt"
	"testing"
	"time"
)

func newClockedCache() (*PageCache, *time.Time) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	c := NewPageCache()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestPageCacheExpires(t *testing.T) {
	c, now := newClockedCache()
	c.Set("/blog/", []byte("listing"), "text/html", time.Minute)

	body, ct, ok := c.Get("/blog/")
	if !ok || string(body) != "listing" || ct != "text/html" {
		t.Fatalf("expected fresh entry, got %q %q %v", body, ct, ok)
	}

	*now = now.Add(time.Minute)
	if _, _, ok := c.Get("/blog/"); ok {
		t.Fatalf("expected entry to expire at its TTL")
	}
}

func TestPageCacheIgnoresZeroTTL(t *testing.T) {
	c, _ := newClockedCache()
	c.Set("/", []byte("home"), "text/html", 0)
	if c.Len() != 0 {
		t.Fatalf("expected nothing stored for zero TTL")
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	c, _ := newClockedCache()
	c.Set("/", []byte("home"), "text/html", time.Hour)
	c.Set("/about/", []byte("about"), "text/html", time.Hour)
	c.Invalidate()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Invalidate, got %d", c.Len())
	}
}

func TestPageCacheBounded(t *testing.T) {
	c, now := newClockedCache()
	for i := 0; i < maxCacheEntries; i++ {
		c.Set(fmt.Sprintf("/search/?q=%d", i), []byte("x"), "text/html", time.Minute)
	}
	c.Set("/overflow/", []byte("x"), "text/html", time.Minute)
	if _, _, ok := c.Get("/overflow/"); ok {
		t.Fatalf("expected full cache to refuse new entries")
	}

	*now = now.Add(2 * time.Minute)
	c.Set("/overflow/", []byte("x"), "text/html", time.Minute)
	if _, _, ok := c.Get("/overflow/"); !ok {
		t.Fatalf("expected expired entries to be swept for new ones")
	}
	if c.Len() != 1 {
		t.Fatalf("expected only the new entry after sweep, got %d", c.Len())
	}
}
