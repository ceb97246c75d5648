package content

import (
	"net/http"
	"time"
)

// Config selects and tunes the content backend. An empty URL or Key puts the
// service in fixture mode.
type Config struct {
	URL     string        `mapstructure:"url"`     // Ghost site URL, e.g. https://cms.example.com
	Key     string        `mapstructure:"key"`     // Ghost Content API key
	Version string        `mapstructure:"version"` // Accept-Version header (default "v5.0")
	Timeout time.Duration `mapstructure:"timeout"` // HTTP timeout for Ghost calls (default 10s)

	PostsPerPage int `mapstructure:"postsPerPage"` // default page size for listings (default 9)
	RelatedPosts int `mapstructure:"relatedPosts"` // default related-post count (default 3)

	// HTTPClient overrides the client used for Ghost calls. Tests use it to
	// point at an httptest server with custom transports.
	HTTPClient *http.Client `mapstructure:"-"`
}

const (
	defaultVersion      = "v5.0"
	defaultTimeout      = 10 * time.Second
	defaultPostsPerPage = 9
	defaultRelatedPosts = 3
	defaultRecentPosts  = 6
	defaultSearchLimit  = 10
	defaultExcerptLen   = 150
)

// Configured reports whether both remote settings are present.
func (c Config) Configured() bool {
	return c.URL != "" && c.Key != ""
}

func (c *Config) setDefaults() {
	if c.Version == "" {
		c.Version = defaultVersion
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.PostsPerPage <= 0 {
		c.PostsPerPage = defaultPostsPerPage
	}
	if c.RelatedPosts <= 0 {
		c.RelatedPosts = defaultRelatedPosts
	}
}
