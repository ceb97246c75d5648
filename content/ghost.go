package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const ghostName = "ghost"

var reContentKey = regexp.MustCompile(`^[0-9a-f]{26}$`)

// GhostBackend reads content from the Ghost Content API.
type GhostBackend struct {
	base    *url.URL
	key     string
	version string
	client  *http.Client
}

// NewGhostBackend validates cfg and returns a client for the Ghost site at
// cfg.URL. It performs no network I/O.
func NewGhostBackend(cfg Config) (*GhostBackend, error) {
	cfg.setDefaults()

	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("ghost: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ghost: url %q must use http or https", cfg.URL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("ghost: url %q has no host", cfg.URL)
	}
	if !reContentKey.MatchString(cfg.Key) {
		return nil, fmt.Errorf("ghost: content key must be 26 hex characters")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GhostBackend{
		base:    u,
		key:     cfg.Key,
		version: cfg.Version,
		client:  client,
	}, nil
}

func (g *GhostBackend) Name() string { return ghostName }

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

type postsPageEnvelope struct {
	Posts []Post `json:"posts"`
	Meta  struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}

type pagesEnvelope struct {
	Pages []Page `json:"pages"`
}

type tagsEnvelope struct {
	Tags []Tag `json:"tags"`
}

type settingsEnvelope struct {
	Settings SiteSettings `json:"settings"`
}

type errorEnvelope struct {
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors"`
}

func (g *GhostBackend) endpoint(resource string, params url.Values) string {
	u := *g.base
	u.Path = path.Join(u.Path, "ghost/api/content", resource) + "/"
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", g.key)
	u.RawQuery = params.Encode()
	return u.String()
}

// get fetches resource and decodes the JSON body into out.
func (g *GhostBackend) get(ctx context.Context, resource string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint(resource, params), nil)
	if err != nil {
		return fmt.Errorf("ghost: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", g.version)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ghost: %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && len(env.Errors) > 0 {
			apiErr.Message = env.Errors[0].Message
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ghost: decode %s: %w", resource, err)
	}
	return nil
}

func postParams(limit string, filter string) url.Values {
	v := url.Values{}
	v.Set("include", "tags,authors")
	v.Set("order", "published_at DESC")
	v.Set("limit", limit)
	v.Set("filter", filter)
	return v
}

func (g *GhostBackend) BrowsePosts(ctx context.Context, q PostQuery) (PostList, error) {
	filter := "status:published"
	if q.Tag != "" {
		filter += "+tag:" + q.Tag
	}
	params := postParams(strconv.Itoa(q.Limit), filter)
	params.Set("page", strconv.Itoa(q.Page))

	var env postsPageEnvelope
	if err := g.get(ctx, "posts", params, &env); err != nil {
		return PostList{}, err
	}
	if env.Posts == nil {
		env.Posts = []Post{}
	}
	meta := env.Meta.Pagination
	return PostList{Posts: env.Posts, Meta: &meta}, nil
}

func (g *GhostBackend) ReadPost(ctx context.Context, slug string) (Post, error) {
	params := url.Values{}
	params.Set("include", "tags,authors")

	var env postsEnvelope
	if err := g.get(ctx, "posts/slug/"+url.PathEscape(slug), params, &env); err != nil {
		return Post{}, err
	}
	if len(env.Posts) == 0 {
		return Post{}, ErrNotFound
	}
	return env.Posts[0], nil
}

func (g *GhostBackend) RelatedPosts(ctx context.Context, excludeSlug string, tagSlugs []string, limit int) ([]Post, error) {
	filter := "tag:[" + strings.Join(tagSlugs, ",") + "]+status:published"
	if excludeSlug != "" {
		filter += "+slug:-" + excludeSlug
	}
	var env postsEnvelope
	if err := g.get(ctx, "posts", postParams(strconv.Itoa(limit), filter), &env); err != nil {
		return nil, err
	}
	return withoutSlug(env.Posts, excludeSlug), nil
}

func (g *GhostBackend) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	var env postsEnvelope
	if err := g.get(ctx, "posts", postParams(strconv.Itoa(limit), "status:published"), &env); err != nil {
		return nil, err
	}
	return nonNil(env.Posts), nil
}

func (g *GhostBackend) ReadPage(ctx context.Context, slug string) (Page, error) {
	params := url.Values{}
	params.Set("include", "authors")

	var env pagesEnvelope
	if err := g.get(ctx, "pages/slug/"+url.PathEscape(slug), params, &env); err != nil {
		return Page{}, err
	}
	if len(env.Pages) == 0 {
		return Page{}, ErrNotFound
	}
	return env.Pages[0], nil
}

func (g *GhostBackend) BrowsePages(ctx context.Context) ([]Page, error) {
	params := url.Values{}
	params.Set("include", "authors")
	params.Set("filter", "status:published")
	params.Set("limit", "all")

	var env pagesEnvelope
	if err := g.get(ctx, "pages", params, &env); err != nil {
		return nil, err
	}
	return nonNil(env.Pages), nil
}

func (g *GhostBackend) BrowseTags(ctx context.Context) ([]Tag, error) {
	params := url.Values{}
	params.Set("include", "count.posts")
	params.Set("order", "count.posts DESC")
	params.Set("limit", "all")

	var env tagsEnvelope
	if err := g.get(ctx, "tags", params, &env); err != nil {
		return nil, err
	}
	return nonNil(env.Tags), nil
}

// SearchPosts pulls the full published archive without bodies and filters it
// locally; the Content API has no full-text search.
func (g *GhostBackend) SearchPosts(ctx context.Context, query string, limit int) ([]Post, error) {
	params := postParams("all", "status:published")
	params.Set("fields", "id,title,slug,excerpt,custom_excerpt,feature_image,published_at,updated_at,meta_description")

	var env postsEnvelope
	if err := g.get(ctx, "posts", params, &env); err != nil {
		return nil, err
	}
	return head(matchPosts(env.Posts, query), limit), nil
}

func (g *GhostBackend) Settings(ctx context.Context) (SiteSettings, error) {
	var env settingsEnvelope
	if err := g.get(ctx, "settings", nil, &env); err != nil {
		return SiteSettings{}, err
	}
	return env.Settings, nil
}

func withoutSlug(posts []Post, slug string) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Slug != slug {
			out = append(out, p)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
