// Package content is the content access layer of the site. It serves posts,
// tags, pages and site settings from a Ghost CMS when one is configured and
// from a built-in fixture dataset otherwise.
//
// Service methods never return errors. Every call yields a Result whose Data
// has the success shape (an empty slice, a nil pointer) when nothing could be
// loaded, so page handlers can always render.
package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Status classifies the outcome of a Service call.
type Status int

const (
	// StatusOK means data was found.
	StatusOK Status = iota
	// StatusEmpty means the backend answered but had no matching content.
	StatusEmpty
	// StatusFailed means the backend call failed; Data is the empty shape.
	StatusFailed
	// StatusInvalid means the arguments were rejected before any backend call.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result carries the data of a Service call together with how it was
// obtained. Err is set for StatusFailed and StatusInvalid, and to
// ErrNotFound when a single item lookup found nothing.
type Result[T any] struct {
	Data   T
	Status Status
	Err    error
}

// OK reports whether the call produced content.
func (r Result[T]) OK() bool { return r.Status == StatusOK }

// Service is the entry point used by page handlers. It is safe for
// concurrent use; its backend is fixed at construction.
type Service struct {
	backend Backend
	cfg     Config
	logger  *zap.Logger
}

// New selects a backend for cfg (see NewBackend) and wraps it in a Service.
func New(cfg Config, logger *zap.Logger) *Service {
	return NewService(NewBackend(cfg, logger), cfg, logger)
}

// NewService wraps an explicit backend.
func NewService(backend Backend, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.setDefaults()
	return &Service{
		backend: backend,
		cfg:     cfg,
		logger:  logger.Named("content"),
	}
}

// BackendName reports which backend serves content.
func (s *Service) BackendName() string { return s.backend.Name() }

// Config returns the effective configuration, defaults applied.
func (s *Service) Config() Config { return s.cfg }

// call runs fn and converts its outcome into a Result. All CAL logging
// happens here.
func call[T any](ctx context.Context, s *Service, op string, empty T, isEmpty func(T) bool, fn func(context.Context) (T, error)) (res Result[T]) {
	fields := []zap.Field{zap.String("op", op), zap.String("backend", s.backend.Name())}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("content: %s: panic: %v", op, r)
			s.logger.Error("content call panicked", append(fields, zap.Error(err))...)
			res = Result[T]{Data: empty, Status: StatusFailed, Err: err}
		}
	}()

	data, err := fn(ctx)
	switch {
	case err == nil && !isEmpty(data):
		return Result[T]{Data: data, Status: StatusOK}
	case err == nil:
		s.logger.Debug("no content", fields...)
		return Result[T]{Data: data, Status: StatusEmpty}
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("content not found", fields...)
		return Result[T]{Data: empty, Status: StatusEmpty, Err: err}
	default:
		s.logger.Error("content call failed", append(fields, zap.Error(err))...)
		return Result[T]{Data: empty, Status: StatusFailed, Err: err}
	}
}

func reject[T any](s *Service, op string, empty T, err error) Result[T] {
	s.logger.Warn("content call rejected", zap.String("op", op), zap.Error(err))
	return Result[T]{Data: empty, Status: StatusInvalid, Err: err}
}

func isNil[T any](p *T) bool     { return p == nil }
func noPosts(p []Post) bool      { return len(p) == 0 }
func noPostList(l PostList) bool { return len(l.Posts) == 0 }
func noPages(p []Page) bool      { return len(p) == 0 }
func noTags(t []Tag) bool        { return len(t) == 0 }

// limitOrDefault maps 0 to def and rejects negative values.
func limitOrDefault(name string, n, def int) (int, error) {
	switch {
	case n < 0:
		return 0, invalid("%s must be >= 1, got %d", name, n)
	case n == 0:
		return def, nil
	default:
		return n, nil
	}
}

var reSlug = regexp.MustCompile(`^[a-z0-9-]+$`)

// checkSlug rejects slugs that are empty or could alter a Ghost filter
// expression.
func checkSlug(what, slug string) error {
	if slug == "" {
		return invalid("%s is empty", what)
	}
	if !reSlug.MatchString(slug) {
		return invalid("%s %q may only contain a-z, 0-9 and '-'", what, slug)
	}
	return nil
}

// ListPosts returns one page of published posts, newest first, optionally
// restricted to a tag slug. page and limit of 0 select the defaults.
func (s *Service) ListPosts(ctx context.Context, page, limit int, tag string) Result[PostList] {
	const op = "listPosts"
	empty := PostList{Posts: []Post{}}

	page, err := limitOrDefault("page", page, 1)
	if err != nil {
		return reject(s, op, empty, err)
	}
	limit, err = limitOrDefault("limit", limit, s.cfg.PostsPerPage)
	if err != nil {
		return reject(s, op, empty, err)
	}
	q := PostQuery{Page: page, Limit: limit, Tag: strings.TrimSpace(tag)}
	if q.Tag != "" {
		if err := checkSlug("tag", q.Tag); err != nil {
			return reject(s, op, empty, err)
		}
	}

	return call(ctx, s, op, empty, noPostList, func(ctx context.Context) (PostList, error) {
		list, err := s.backend.BrowsePosts(ctx, q)
		if err != nil {
			return PostList{}, err
		}
		list.Posts = nonNil(list.Posts)
		return list, nil
	})
}

// GetPost returns the published post with the given slug, or nil.
func (s *Service) GetPost(ctx context.Context, slug string) Result[*Post] {
	const op = "getPost"
	slug = strings.TrimSpace(slug)
	if err := checkSlug("slug", slug); err != nil {
		return reject[*Post](s, op, nil, err)
	}
	return call[*Post](ctx, s, op, nil, isNil[Post], func(ctx context.Context) (*Post, error) {
		p, err := s.backend.ReadPost(ctx, slug)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
}

// GetRelatedPosts returns published posts sharing at least one of tags,
// excluding excludeSlug, newest first. An empty tag list returns an empty
// result without contacting the backend.
func (s *Service) GetRelatedPosts(ctx context.Context, excludeSlug string, tags []Tag, limit int) Result[[]Post] {
	const op = "getRelatedPosts"
	empty := []Post{}

	if len(tags) == 0 {
		return Result[[]Post]{Data: empty, Status: StatusEmpty}
	}
	limit, err := limitOrDefault("limit", limit, s.cfg.RelatedPosts)
	if err != nil {
		return reject(s, op, empty, err)
	}
	excludeSlug = strings.TrimSpace(excludeSlug)
	if excludeSlug != "" {
		if err := checkSlug("excludeSlug", excludeSlug); err != nil {
			return reject(s, op, empty, err)
		}
	}
	slugs := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for i, t := range tags {
		slug := strings.TrimSpace(t.Slug)
		if slug == "" {
			return reject(s, op, empty, invalid("tag %d has no slug", i))
		}
		if err := checkSlug("tag", slug); err != nil {
			return reject(s, op, empty, err)
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}

	return call(ctx, s, op, empty, noPosts, func(ctx context.Context) ([]Post, error) {
		posts, err := s.backend.RelatedPosts(ctx, excludeSlug, slugs, limit)
		if err != nil {
			return nil, err
		}
		return head(withoutSlug(posts, excludeSlug), limit), nil
	})
}

// GetRecentPosts returns the newest published posts. limit 0 means 6.
func (s *Service) GetRecentPosts(ctx context.Context, limit int) Result[[]Post] {
	const op = "getRecentPosts"
	empty := []Post{}

	limit, err := limitOrDefault("limit", limit, defaultRecentPosts)
	if err != nil {
		return reject(s, op, empty, err)
	}
	return call(ctx, s, op, empty, noPosts, func(ctx context.Context) ([]Post, error) {
		posts, err := s.backend.RecentPosts(ctx, limit)
		if err != nil {
			return nil, err
		}
		return head(nonNil(posts), limit), nil
	})
}

// GetPage returns the page with the given slug, or nil.
func (s *Service) GetPage(ctx context.Context, slug string) Result[*Page] {
	const op = "getPage"
	slug = strings.TrimSpace(slug)
	if err := checkSlug("slug", slug); err != nil {
		return reject[*Page](s, op, nil, err)
	}
	return call[*Page](ctx, s, op, nil, isNil[Page], func(ctx context.Context) (*Page, error) {
		p, err := s.backend.ReadPage(ctx, slug)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
}

// ListPages returns every published page.
func (s *Service) ListPages(ctx context.Context) Result[[]Page] {
	return call(ctx, s, "listPages", []Page{}, noPages, func(ctx context.Context) ([]Page, error) {
		pages, err := s.backend.BrowsePages(ctx)
		return nonNil(pages), err
	})
}

// ListTags returns all tags ordered by post count, highest first.
func (s *Service) ListTags(ctx context.Context) Result[[]Tag] {
	return call(ctx, s, "listTags", []Tag{}, noTags, func(ctx context.Context) ([]Tag, error) {
		tags, err := s.backend.BrowseTags(ctx)
		if err != nil {
			return nil, err
		}
		tags = nonNil(tags)
		sort.SliceStable(tags, func(i, j int) bool {
			return tags[i].Count.Posts > tags[j].Count.Posts
		})
		return tags, nil
	})
}

// SearchPosts returns published posts whose title or excerpt contains query,
// ignoring case, newest first. A blank query matches nothing.
func (s *Service) SearchPosts(ctx context.Context, query string, limit int) Result[[]Post] {
	const op = "searchPosts"
	empty := []Post{}

	limit, err := limitOrDefault("limit", limit, defaultSearchLimit)
	if err != nil {
		return reject(s, op, empty, err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Result[[]Post]{Data: empty, Status: StatusEmpty}
	}
	return call(ctx, s, op, empty, noPosts, func(ctx context.Context) ([]Post, error) {
		posts, err := s.backend.SearchPosts(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return head(nonNil(posts), limit), nil
	})
}

// GetSettings returns the CMS site settings, or nil.
func (s *Service) GetSettings(ctx context.Context) Result[*SiteSettings] {
	return call[*SiteSettings](ctx, s, "getSettings", nil, isNil[SiteSettings], func(ctx context.Context) (*SiteSettings, error) {
		st, err := s.backend.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return &st, nil
	})
}
