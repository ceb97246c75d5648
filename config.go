package authorsite

import (
	"time"

	"go.uber.org/zap"

	"github.com/KylerLong-dev/author-site/content"
	"github.com/KylerLong-dev/author-site/views"
)

// SiteConfig holds all configuration for the site. It is decoded from
// config.yaml and the environment by the CLI.
type SiteConfig struct {
	Name        string       `mapstructure:"name"`        // Site name (default "Doug's Portfolio")
	Author      string       `mapstructure:"author"`      // Author name for bylines and JSON-LD
	Description string       `mapstructure:"description"` // Site description for RSS and meta tags
	URL         string       `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Email       string       `mapstructure:"email"`
	Phone       string       `mapstructure:"phone"`
	Social      views.Social `mapstructure:"social"`
	Works       []views.Work `mapstructure:"works"` // Featured works (default: built-in list)

	Addr string `mapstructure:"addr"` // Listen address (default ":3000")

	Content    content.Config `mapstructure:"ghost"`
	Revalidate Revalidate     `mapstructure:"revalidate"`

	Analytics AnalyticsConfig `mapstructure:"analytics"`

	SessionSecret string `mapstructure:"sessionSecret"` // Analytics is turned off when empty
	CookieSecure  bool   `mapstructure:"cookieSecure"`  // Set true for HTTPS
}

// AnalyticsConfig controls server-side visit recording.
type AnalyticsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`          // default "data/analytics.db"
	RetentionDays int    `mapstructure:"retentionDays"` // default 365
}

// Revalidate holds how long rendered pages of each content class may be
// served from cache before content is fetched again.
type Revalidate struct {
	Posts time.Duration `mapstructure:"posts"` // blog listing and posts (default 1m)
	Pages time.Duration `mapstructure:"pages"` // home, about, contact (default 5m)
	Site  time.Duration `mapstructure:"site"`  // feed, sitemap (default 1h)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Doug's Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Works == nil {
		c.Works = defaultWorks
	}
	if c.Analytics.Path == "" {
		c.Analytics.Path = "data/analytics.db"
	}
	if c.Analytics.RetentionDays == 0 {
		c.Analytics.RetentionDays = 365
	}
	if c.Revalidate.Posts == 0 {
		c.Revalidate.Posts = time.Minute
	}
	if c.Revalidate.Pages == 0 {
		c.Revalidate.Pages = 5 * time.Minute
	}
	if c.Revalidate.Site == 0 {
		c.Revalidate.Site = time.Hour
	}
}

// site converts the configuration into the view-level site settings.
func (c SiteConfig) site() views.Site {
	return views.Site{
		Name:        c.Name,
		Author:      c.Author,
		Description: c.Description,
		URL:         c.URL,
		Email:       c.Email,
		Phone:       c.Phone,
		Social:      c.Social,
		Year:        time.Now().Year(),
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithContent replaces the content service chosen from Config.Content.
func WithContent(s *content.Service) Option {
	return func(a *App) {
		a.Content = s
	}
}

// WithViews replaces the default templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

var defaultWorks = []views.Work{
	{
		Title:       "The Coffee House Chronicles",
		Description: "A heartwarming tale of community, love, and the perfect cup of coffee that brings people together in a small mountain town.",
		Image:       "/public/images/book-1.jpg",
		Type:        "Novel",
		Year:        "2023",
		Status:      "Published",
		Links:       []views.Link{{Label: "Amazon", URL: "#"}, {Label: "Goodreads", URL: "#"}, {Label: "Bookshop", URL: "#"}},
	},
	{
		Title:       "Autumn Leaves & Second Chances",
		Description: "A collection of short stories exploring themes of redemption, forgiveness, and new beginnings set against autumn landscapes.",
		Image:       "/public/images/book-2.jpg",
		Type:        "Short Story Collection",
		Year:        "2022",
		Status:      "Published",
		Links:       []views.Link{{Label: "Amazon", URL: "#"}, {Label: "Goodreads", URL: "#"}, {Label: "Bookshop", URL: "#"}},
	},
	{
		Title:       "Whispers in the Garden",
		Description: "An upcoming mystery novel about a garden that holds secrets from generations past.",
		Image:       "/public/images/book-3.jpg",
		Type:        "Mystery Novel",
		Year:        "2024",
		Status:      "Coming Soon",
		Links:       []views.Link{{Label: "Preorder", URL: "#"}, {Label: "Goodreads", URL: "#"}},
	},
}
