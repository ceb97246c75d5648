package views

import (
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"

	"github.com/KylerLong-dev/author-site/content"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://dougauthor.com", nil, "https://dougauthor.com/"},
		{"https://dougauthor.com/", nil, "https://dougauthor.com/"},
		{"https://dougauthor.com", []string{""}, "https://dougauthor.com/"},
		{"https://dougauthor.com", []string{"about"}, "https://dougauthor.com/about/"},
		{"https://dougauthor.com/", []string{"blog", "coffee-shop-chronicles"}, "https://dougauthor.com/blog/coffee-shop-chronicles/"},
		{"https://example.com/site", []string{"blog/tag/writing/"}, "https://example.com/site/blog/tag/writing/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %q) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		base, name, want string
	}{
		{"https://dougauthor.com", "feed.xml", "https://dougauthor.com/feed.xml"},
		{"https://dougauthor.com/", "sitemap.xml", "https://dougauthor.com/sitemap.xml"},
		{"https://example.com/site/", "feed.xml", "https://example.com/site/feed.xml"},
	}
	for _, tt := range tests {
		if got := FileURL(tt.base, tt.name); got != tt.want {
			t.Errorf("FileURL(%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
		}
	}
}

func TestJsonLD(t *testing.T) {
	var site map[string]interface{}
	if err := gojson.Unmarshal([]byte(WebsiteJsonLD(testSite)), &site); err != nil {
		t.Fatalf("website JSON-LD: %v", err)
	}
	if site["url"] != "https://example.com/" {
		t.Fatalf("unexpected website url %v", site["url"])
	}

	post := content.Post{Slug: "coffee", Title: "</script><b>Coffee</b>", Tags: []content.Tag{{Name: "Writing"}}}
	raw := string(BlogPostingJsonLD(testSite, post))
	if strings.Contains(raw, "</script>") {
		t.Fatalf("expected markup to be escaped, got %s", raw)
	}
	var posting map[string]interface{}
	if err := gojson.Unmarshal([]byte(raw), &posting); err != nil {
		t.Fatalf("posting JSON-LD: %v", err)
	}
	if posting["url"] != "https://example.com/blog/coffee/" || posting["keywords"] != "Writing" {
		t.Fatalf("unexpected posting %v", posting)
	}
}
