package views

import (
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/KylerLong-dev/author-site/content"
)

// bodyPolicy allows the markup Ghost's editor produces (figures, embeds
// excluded) and strips scripts, handlers and unsafe URLs.
var bodyPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("figure", "figcaption", "div", "span", "pre", "code")
	p.AllowElements("figure", "figcaption")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// SafeHTML sanitises CMS-provided markup for direct output.
func SafeHTML(s string) template.HTML {
	return template.HTML(bodyPolicy.Sanitize(s))
}

// BuildURL joins path segments onto a base URL. The result always ends in
// a slash, so BuildURL(base) is the canonical home URL.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FileURL joins a base URL with a file name such as "feed.xml", without
// a trailing slash.
func FileURL(base, name string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, name)
	return u.String()
}

// FormatDate renders a publication date for humans, e.g. "January 15, 2024".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// Byline returns the primary author's name, or the site author.
func Byline(site Site, p content.Post) string {
	if a, ok := p.PrimaryAuthor(); ok && a.Name != "" {
		return a.Name
	}
	return site.Author
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block for the site.
func WebsiteJsonLD(site Site) template.JS {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      BuildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshalJS(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, post content.Post) template.JS {
	postURL := BuildURL(site.URL, "blog", post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   content.FormatExcerpt(post, 160),
		"datePublished": post.PublishedAt.Format(time.RFC3339),
		"dateModified":  post.UpdatedAt.Format(time.RFC3339),
		"url":           postURL,
		"author": map[string]string{
			"@type": "Person",
			"name":  Byline(site, post),
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.FeatureImage != "" {
		data["image"] = post.FeatureImage
	}
	if len(post.Tags) > 0 {
		names := make([]string, len(post.Tags))
		for i, t := range post.Tags {
			names[i] = t.Name
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalJS(data)
}

func marshalJS(v interface{}) template.JS {
	b, err := gojson.Marshal(v)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
