// Package authorsite serves an author's portfolio and blog. Content comes
// from a Ghost CMS through the content package, falling back to built-in
// fixtures when no CMS is configured.
//
// Templates are supplied through ViewFuncs; DefaultViews wires the ones in
// the views package.
package authorsite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KylerLong-dev/author-site/analytics"
	"github.com/KylerLong-dev/author-site/content"
	"github.com/KylerLong-dev/author-site/views"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home        func(views.HomeData) templ.Component
	About       func(views.AboutData) templ.Component
	Contact     func(views.ContactData) templ.Component
	Blog        func(views.BlogData) templ.Component
	Post        func(views.PostData) templ.Component
	Search      func(views.SearchData) templ.Component
	NotFound    func(views.Site) templ.Component
	ServerError func(views.Site) templ.Component
}

// DefaultViews returns the embedded templates from the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		About:       views.About,
		Contact:     views.Contact,
		Blog:        views.Blog,
		Post:        views.Post,
		Search:      views.Search,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App wires the content service, page cache, handlers, middleware and
// analytics together.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Content *content.Service
	Cache   *PageCache
	Views   ViewFuncs
	Logger  *zap.Logger

	searchLimiter  *RateLimiter
	analyticsStore *analytics.Store
	recorder       *analytics.Recorder
	stopCleanup    func()
	customRoutes   []func(*App)
	staticDir      string
}

// New creates an App. Unless WithContent is given, the content backend is
// chosen from cfg.Content.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		Cache:     NewPageCache(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.Content == nil {
		a.Content = content.New(a.Config.Content, a.Logger)
	}
	return a
}

// Setup initialises analytics, middleware and routes. Start calls it;
// tests call it directly and drive a.Echo with httptest.
func (a *App) Setup() error {
	a.searchLimiter = NewRateLimiter(30, time.Minute)

	if a.Config.Analytics.Enabled && a.Config.SessionSecret == "" {
		a.Logger.Warn("analytics disabled: sessionSecret is not set")
		a.Config.Analytics.Enabled = false
	}
	if a.Config.Analytics.Enabled {
		store, err := analytics.NewStore(a.Config.Analytics.Path)
		if err != nil {
			return fmt.Errorf("authorsite: init analytics: %w", err)
		}
		a.analyticsStore = store

		a.recorder, err = analytics.NewRecorder(store, siteHost(a.Config.URL), a.Logger)
		if err != nil {
			return fmt.Errorf("authorsite: init analytics salt: %w", err)
		}
		a.stopCleanup = store.StartCleanupScheduler(a.Config.Analytics.RetentionDays, 24*time.Hour, a.Logger.Named("analytics"))
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the App up and serves until Shutdown is called.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.String("content_backend", a.Content.BackendName()),
		zap.Bool("analytics", a.recorder != nil),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap, a.cachePage(classSite))
	e.GET("/feed.xml", a.handleFeed, a.cachePage(classSite))

	e.GET("/", a.handleHome, a.cachePage(classPages))
	e.GET("/about/", a.handleAbout, a.cachePage(classPages))
	e.GET("/contact/", a.handleContact, a.cachePage(classPages))
	e.GET("/blog/", a.handleBlog, a.cachePage(classPosts))
	e.GET("/blog/tag/:tag/", a.handleBlog, a.cachePage(classPosts))
	e.GET("/blog/:slug/", a.handlePost, a.cachePage(classPosts))
	e.GET("/search/", a.handleSearch)

	api := e.Group("/api")
	api.GET("/posts", a.handleAPIPosts)
	api.GET("/posts/:slug", a.handleAPIPost)
	api.GET("/tags", a.handleAPITags)
	api.GET("/search", a.handleAPISearch)
}

// Close releases the analytics store and background workers.
func (a *App) Close() error {
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
		a.searchLimiter = nil
	}
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.analyticsStore != nil {
		err := a.analyticsStore.Close()
		a.analyticsStore = nil
		return err
	}
	return nil
}

func siteHost(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
