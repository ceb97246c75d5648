package authorsite

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// contentClass groups routes that share a revalidation interval.
type contentClass int

const (
	classPosts contentClass = iota
	classPages
	classSite
)

func (c contentClass) String() string {
	switch c {
	case classPosts:
		return "posts"
	case classPages:
		return "pages"
	case classSite:
		return "site"
	}
	return "unknown"
}

// ttl returns the revalidation interval configured for class.
func (a *App) ttl(class contentClass) time.Duration {
	switch class {
	case classPosts:
		return a.Config.Revalidate.Posts
	case classSite:
		return a.Config.Revalidate.Site
	default:
		return a.Config.Revalidate.Pages
	}
}

const maxCacheEntries = 512

type cachedPage struct {
	body        []byte
	contentType string
	expires     time.Time
}

// PageCache holds rendered responses keyed by request URI until their TTL
// expires.
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]cachedPage
	now     func() time.Time
}

// NewPageCache creates an empty PageCache.
func NewPageCache() *PageCache {
	return &PageCache{entries: make(map[string]cachedPage), now: time.Now}
}

// Get returns the cached body and content type for key if still fresh.
func (c *PageCache) Get(key string) ([]byte, string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return nil, "", false
	}
	return e.body, e.contentType, true
}

// Set stores body under key for ttl. When the cache is full, expired
// entries are swept first; if none expired the entry is not stored.
func (c *PageCache) Set(key string, body []byte, contentType string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= maxCacheEntries {
		for k, e := range c.entries {
			if !now.Before(e.expires) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= maxCacheEntries {
			return
		}
	}
	c.entries[key] = cachedPage{body: body, contentType: contentType, expires: now.Add(ttl)}
}

// Invalidate clears the cache so the next request renders fresh content.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedPage)
	c.mu.Unlock()
}

// Len returns the number of stored entries, fresh or not.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const classKey = "content_class"

// cachePage serves fresh cached renders and tags the request with its
// content class so the handler's render can populate the cache.
func (a *App) cachePage(class contentClass) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(classKey, class)
			setCacheControl(c, a.ttl(class))

			if body, ct, ok := a.Cache.Get(c.Request().URL.RequestURI()); ok {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, ct, body)
			}
			c.Response().Header().Set("X-Cache", "MISS")
			return next(c)
		}
	}
}

// store caches body for the current request if its route is cacheable.
func (a *App) store(c echo.Context, body []byte, contentType string) {
	class, ok := c.Get(classKey).(contentClass)
	if !ok {
		return
	}
	a.Cache.Set(c.Request().URL.RequestURI(), body, contentType, a.ttl(class))
}
