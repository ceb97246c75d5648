package views

import (
	"fmt"
	"net/url"

	"github.com/KylerLong-dev/author-site/content"
)

// Site holds site-wide settings. Every page receives it so nothing is
// hardcoded in templates.
type Site struct {
	Name        string
	Author      string
	Description string
	URL         string // canonical origin
	Email       string
	Phone       string
	Social      Social
	Year        int // copyright year in the footer
}

// Social lists the author's handles. Empty fields are not rendered.
type Social struct {
	Twitter   string `mapstructure:"twitter"`
	Instagram string `mapstructure:"instagram"`
	Facebook  string `mapstructure:"facebook"`
	LinkedIn  string `mapstructure:"linkedin"`
	Goodreads string `mapstructure:"goodreads"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Work is a published or upcoming book shown on the home and about pages.
type Work struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Image       string `mapstructure:"image"`
	Type        string `mapstructure:"type"`
	Year        string `mapstructure:"year"`
	Status      string `mapstructure:"status"`
	Links       []Link `mapstructure:"links"`
}

// Link is a labelled outbound link (store, Goodreads, preorder...).
type Link struct {
	Label string `mapstructure:"label"`
	URL   string `mapstructure:"url"`
}

// PostCard is a post prepared for a listing: excerpt and reading time are
// computed once here instead of in templates.
type PostCard struct {
	content.Post
	Summary     string
	ReadingTime int
}

// NewPostCard derives the listing fields for p.
func NewPostCard(p content.Post) PostCard {
	return PostCard{
		Post:        p,
		Summary:     content.FormatExcerpt(p, 150),
		ReadingTime: content.ReadingTime(p.HTML),
	}
}

// Cards maps NewPostCard over posts.
func Cards(posts []content.Post) []PostCard {
	out := make([]PostCard, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostCard(p))
	}
	return out
}

type HomeData struct {
	Site   Site
	Meta   PageMeta
	Recent []PostCard
	About  *content.Page
	Works  []Work
}

// AboutSummary is the teaser shown on the home page.
func (d HomeData) AboutSummary() string {
	if d.About == nil {
		return ""
	}
	return content.FormatExcerpt(content.Post(*d.About), 300)
}

type AboutData struct {
	Site  Site
	Meta  PageMeta
	Page  *content.Page
	Works []Work
}

type ContactData struct {
	Site     Site
	Meta     PageMeta
	Settings *content.SiteSettings
}

type BlogData struct {
	Site       Site
	Meta       PageMeta
	Posts      []PostCard
	Pagination *content.Pagination
	Tags       []content.Tag
	ActiveTag  string
	BasePath   string // "/blog/" or "/blog/tag/<slug>/"
}

// PageURL links to page n of the current listing.
func (d BlogData) PageURL(n int) string {
	if n <= 1 {
		return d.BasePath
	}
	return fmt.Sprintf("%s?page=%d", d.BasePath, n)
}

type PostData struct {
	Site        Site
	Meta        PageMeta
	Post        content.Post
	ReadingTime int
	Related     []PostCard
}

type SearchData struct {
	Site    Site
	Meta    PageMeta
	Query   string
	Results []PostCard
}

// Searched reports whether a query was submitted.
func (d SearchData) Searched() bool { return d.Query != "" }

// TagPath returns the listing path for a tag slug.
func TagPath(slug string) string {
	return "/blog/tag/" + url.PathEscape(slug) + "/"
}

// PostPath returns the path of a post.
func PostPath(slug string) string {
	return "/blog/" + url.PathEscape(slug) + "/"
}
