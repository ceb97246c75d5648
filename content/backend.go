package content

import (
	"context"

	"go.uber.org/zap"
)

// PostQuery selects one page of published posts, optionally by tag slug.
type PostQuery struct {
	Page  int
	Limit int
	Tag   string
}

// Backend is a source of CMS content. Implementations return posts newest
// first and report missing items with ErrNotFound.
type Backend interface {
	// Name identifies the backend in logs ("ghost" or "fixture").
	Name() string

	BrowsePosts(ctx context.Context, q PostQuery) (PostList, error)
	ReadPost(ctx context.Context, slug string) (Post, error)
	// RelatedPosts returns posts sharing at least one of tagSlugs, never
	// including excludeSlug.
	RelatedPosts(ctx context.Context, excludeSlug string, tagSlugs []string, limit int) ([]Post, error)
	RecentPosts(ctx context.Context, limit int) ([]Post, error)
	ReadPage(ctx context.Context, slug string) (Page, error)
	BrowsePages(ctx context.Context) ([]Page, error)
	// BrowseTags returns tags ordered by post count, highest first.
	BrowseTags(ctx context.Context) ([]Tag, error)
	// SearchPosts matches query case-insensitively against title and excerpt.
	SearchPosts(ctx context.Context, query string, limit int) ([]Post, error)
	Settings(ctx context.Context) (SiteSettings, error)
}

// NewBackend picks the backend for cfg. A Ghost backend is used when both
// URL and key are set and valid; anything else falls back to the fixture
// dataset. It never fails and logs the chosen mode exactly once.
func NewBackend(cfg Config, logger *zap.Logger) Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.setDefaults()

	if !cfg.Configured() {
		logger.Warn("ghost url or content key not set, serving fixture content")
		logger.Info("content backend selected", zap.String("backend", fixtureName))
		return NewFixtureBackend()
	}

	gb, err := NewGhostBackend(cfg)
	if err != nil {
		logger.Warn("ghost backend unusable, serving fixture content", zap.Error(err))
		logger.Info("content backend selected", zap.String("backend", fixtureName))
		return NewFixtureBackend()
	}
	logger.Info("content backend selected",
		zap.String("backend", gb.Name()),
		zap.String("url", cfg.URL),
		zap.String("version", cfg.Version))
	return gb
}
