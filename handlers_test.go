package authorsite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KylerLong-dev/author-site/content"
)

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	a := New(cfg, append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	if err := a.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func get(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

var errCMSDown = errors.New("cms down")

// downBackend fails every call, like an unreachable CMS.
type downBackend struct{}

func (downBackend) Name() string { return "down" }
func (downBackend) BrowsePosts(context.Context, content.PostQuery) (content.PostList, error) {
	return content.PostList{}, errCMSDown
}
func (downBackend) ReadPost(context.Context, string) (content.Post, error) {
	return content.Post{}, errCMSDown
}
func (downBackend) RelatedPosts(context.Context, string, []string, int) ([]content.Post, error) {
	return nil, errCMSDown
}
func (downBackend) RecentPosts(context.Context, int) ([]content.Post, error) { return nil, errCMSDown }
func (downBackend) ReadPage(context.Context, string) (content.Page, error) {
	return content.Page{}, errCMSDown
}
func (downBackend) BrowsePages(context.Context) ([]content.Page, error) { return nil, errCMSDown }
func (downBackend) BrowseTags(context.Context) ([]content.Tag, error)   { return nil, errCMSDown }
func (downBackend) SearchPosts(context.Context, string, int) ([]content.Post, error) {
	return nil, errCMSDown
}
func (downBackend) Settings(context.Context) (content.SiteSettings, error) {
	return content.SiteSettings{}, errCMSDown
}

func withDownCMS() Option {
	return WithContent(content.NewService(downBackend{}, content.Config{}, zap.NewNop()))
}

func TestHomeRendersAndCaches(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Coffee Shop Chronicles: Where Stories Are Born", "The Power of Second Chances in Literature"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected home to contain %q", want)
		}
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("expected first request to miss cache, got %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}

	rec = get(a, "/")
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("expected second request to hit cache, got %q", got)
	}
	if rec.Body.String() != body {
		t.Fatalf("cached body differs from rendered body")
	}
}

func TestBlogListing(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/blog/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Coffee Shop Chronicles") {
		t.Fatalf("expected listing to contain posts")
	}

	rec = get(a, "/blog/?page=2")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No posts found.") {
		t.Fatalf("expected empty page past the end, got %d", rec.Code)
	}

	rec = get(a, "/blog/tag/characters/")
	body := rec.Body.String()
	if !strings.Contains(body, "The Power of Second Chances in Literature") {
		t.Fatalf("expected tagged post in tag listing")
	}
	if strings.Contains(body, "Coffee Shop Chronicles: Where Stories Are Born") {
		t.Fatalf("expected untagged post to be filtered out")
	}

	if rec := get(a, "/blog/tag/a)+status:draft/"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed tag, got %d", rec.Code)
	}
}

func TestBlogTagQueryRedirects(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/blog/?tag=coffee&page=2")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/blog/tag/coffee/?page=2" {
		t.Fatalf("unexpected redirect %q", got)
	}
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/blog/coffee-shop-chronicles/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "I&#39;ve written three novels") && !strings.Contains(body, "I've written three novels") {
		t.Fatalf("expected post body to render")
	}
	// shares the "writing" tag
	if !strings.Contains(body, "/blog/art-of-storytelling/") {
		t.Fatalf("expected related post link")
	}

	rec = get(a, "/blog/no-such-post/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page not found") {
		t.Fatalf("expected not-found page")
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/about")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/about/" {
		t.Fatalf("unexpected redirect %q", got)
	}
}

func TestSearch(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/search/?q=COFFEE")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Coffee Shop Chronicles") {
		t.Fatalf("expected case-insensitive match")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected search to be uncached, got %q", got)
	}

	rec = get(a, "/search/?q=zzzz")
	if !strings.Contains(rec.Body.String(), "No posts matched your search.") {
		t.Fatalf("expected empty search state")
	}
}

func TestSearchRateLimited(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	a.searchLimiter.Stop()
	a.searchLimiter = NewRateLimiter(1, time.Minute)

	if rec := get(a, "/search/?q=a"); rec.Code != http.StatusOK {
		t.Fatalf("expected first search to pass, got %d", rec.Code)
	}
	if rec := get(a, "/search/?q=b"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

type apiBody struct {
	Status string              `json:"status"`
	Data   json.RawMessage     `json:"data"`
	Meta   *content.Pagination `json:"meta"`
	Error  string              `json:"error"`
}

func decodeAPI(t *testing.T, rec *httptest.ResponseRecorder) apiBody {
	t.Helper()
	var body apiBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestAPIPosts(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/api/posts?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeAPI(t, rec)
	var posts []content.Post
	if err := json.Unmarshal(body.Data, &posts); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if body.Status != "ok" || len(posts) != 2 {
		t.Fatalf("expected 2 posts with status ok, got %d (%s)", len(posts), body.Status)
	}
	if body.Meta == nil || body.Meta.Pages != 2 || body.Meta.Next == nil || *body.Meta.Next != 2 {
		t.Fatalf("unexpected pagination %+v", body.Meta)
	}

	rec = get(a, "/api/posts?page=-1")
	if rec.Code != http.StatusBadRequest || decodeAPI(t, rec).Status != "invalid" {
		t.Fatalf("expected invalid result for negative page, got %d", rec.Code)
	}

	if rec := get(a, "/api/posts?page=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed page, got %d", rec.Code)
	}

	rec = get(a, "/api/posts/no-such-post")
	if rec.Code != http.StatusNotFound || decodeAPI(t, rec).Status != "empty" {
		t.Fatalf("expected 404 empty, got %d", rec.Code)
	}
}

func TestAPITags(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	body := decodeAPI(t, get(a, "/api/tags"))
	var tags []content.Tag
	if err := json.Unmarshal(body.Data, &tags); err != nil {
		t.Fatalf("decode tags: %v", err)
	}
	if len(tags) == 0 || tags[0].Slug != "writing" {
		t.Fatalf("expected tags ordered by count, got %+v", tags)
	}
}

func TestCMSOutageDegrades(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, withDownCMS())

	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected home to render during outage, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No posts yet. Check back soon.") {
		t.Fatalf("expected empty state on home")
	}
	if rec := get(a, "/"); rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("pages built from failed calls must not be cached")
	}
	if a.Cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", a.Cache.Len())
	}

	rec = get(a, "/blog/any-post/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for post during outage, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Fatalf("expected error page")
	}

	rec = get(a, "/api/tags")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if body := decodeAPI(t, rec); body.Status != "failed" || strings.Contains(body.Error, "cms down") {
		t.Fatalf("unexpected API error body %+v", body)
	}
}

func TestFeedAndSitemap(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://dougauthor.com"})

	rec := get(a, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	feed := rec.Body.String()
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/rss+xml") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if n := strings.Count(feed, "<item>"); n != 3 {
		t.Fatalf("expected 3 feed items, got %d", n)
	}
	if !strings.Contains(feed, "https://dougauthor.com/blog/coffee-shop-chronicles/") {
		t.Fatalf("expected absolute post links in feed")
	}

	sitemap := get(a, "/sitemap.xml").Body.String()
	for _, want := range []string{
		"<loc>https://dougauthor.com/</loc>",
		"<loc>https://dougauthor.com/about/</loc>",
		"<loc>https://dougauthor.com/blog/power-of-second-chances/</loc>",
		"<loc>https://dougauthor.com/blog/tag/coffee/</loc>",
		"<lastmod>2024-01-05</lastmod>",
	} {
		if !strings.Contains(sitemap, want) {
			t.Fatalf("expected sitemap to contain %q", want)
		}
	}
	if strings.Count(sitemap, "/contact/") != 1 {
		t.Fatalf("expected contact page listed once")
	}
}

// extraPagesBackend serves the fixture plus a CMS page with no route.
type extraPagesBackend struct {
	*content.FixtureBackend
}

func (b extraPagesBackend) BrowsePages(ctx context.Context) ([]content.Page, error) {
	pages, err := b.FixtureBackend.BrowsePages(ctx)
	if err != nil {
		return nil, err
	}
	return append(pages, content.Page{Slug: "privacy", Title: "Privacy", UpdatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}), nil
}

func TestSitemapListsRoutedPagesOnly(t *testing.T) {
	svc := content.NewService(extraPagesBackend{content.NewFixtureBackend()}, content.Config{}, zap.NewNop())
	a := newTestApp(t, SiteConfig{URL: "https://dougauthor.com"}, WithContent(svc))

	sitemap := get(a, "/sitemap.xml").Body.String()
	if strings.Contains(sitemap, "/privacy/") {
		t.Fatalf("expected unrouted page to be left out of sitemap")
	}
	for _, want := range []string{"/about/</loc>", "/blog/</loc>", "/contact/</loc>"} {
		if !strings.Contains(sitemap, want) {
			t.Fatalf("expected sitemap to contain %q", want)
		}
	}
}

func TestRobotsFallback(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://dougauthor.com"}, WithStaticDir(t.TempDir()))

	rec := get(a, "/robots.txt")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sitemap: https://dougauthor.com/sitemap.xml") {
		t.Fatalf("unexpected robots.txt %q", rec.Body.String())
	}
}

func TestAnalyticsRecordsPageViews(t *testing.T) {
	cfg := SiteConfig{
		SessionSecret: "test-secret",
		Analytics:     AnalyticsConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "analytics.db")},
	}
	a := newTestApp(t, cfg)

	rec := get(a, "/about/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "visitor=") {
		t.Fatalf("expected visitor session cookie")
	}
	get(a, "/api/tags")

	now := time.Now()
	stats, err := a.analyticsStore.GetStats(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalViews != 1 || len(stats.TopPages) != 1 || stats.TopPages[0].Path != "/about/" {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAnalyticsDisabledWithoutSessionSecret(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dbPath := filepath.Join(t.TempDir(), "a.db")
	a := New(SiteConfig{Analytics: AnalyticsConfig{Enabled: true, Path: dbPath}}, WithLogger(zap.New(core)))
	defer a.Close()

	if err := a.Setup(); err != nil {
		t.Fatalf("expected setup to succeed without a session secret, got %v", err)
	}
	if a.recorder != nil || a.Config.Analytics.Enabled {
		t.Fatalf("expected analytics to be switched off")
	}
	if logs.FilterMessage("analytics disabled: sessionSecret is not set").Len() != 1 {
		t.Fatalf("expected a warning about the missing secret")
	}
	if rec := get(a, "/"); rec.Code != http.StatusOK {
		t.Fatalf("expected home to render, got %d", rec.Code)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("expected no analytics database to be created")
	}
}
