package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/KylerLong-dev/author-site/content"
)

var testSite = Site{
	Name:   "Doug's Portfolio",
	Author: "Doug Long",
	URL:    "https://example.com",
	Email:  "author@example.com",
	Social: Social{Twitter: "authorhandle"},
	Year:   2024,
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func samplePost() content.Post {
	return content.Post{
		ID:          "1",
		Title:       "Coffee Shop Chronicles",
		Slug:        "coffee-shop-chronicles",
		Excerpt:     "There's something magical about coffee shops.",
		HTML:        `<p>Hello</p><script>alert(1)</script>`,
		PublishedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Tags:        []content.Tag{{ID: "3", Name: "Coffee", Slug: "coffee"}},
		Authors:     []content.Author{{ID: "1", Name: "Author Name", Slug: "author-name"}},
	}
}

func TestEveryPageTemplateParses(t *testing.T) {
	for _, name := range []string{"home", "about", "contact", "blog", "post", "search", "notfound", "error"} {
		if _, ok := pages[name]; !ok {
			t.Errorf("page %q not parsed", name)
		}
	}
}

func TestPostPageSanitisesBody(t *testing.T) {
	p := samplePost()
	got := render(t, Post(PostData{Site: testSite, Post: p, ReadingTime: 1}))

	if strings.Contains(got, "<script>alert(1)</script>") {
		t.Errorf("post body was not sanitised: %q", got)
	}
	if !strings.Contains(got, "<p>Hello</p>") {
		t.Errorf("post body missing: %q", got)
	}
	if !strings.Contains(got, "By Author Name") {
		t.Errorf("byline missing")
	}
	if !strings.Contains(got, `"@type":"BlogPosting"`) {
		t.Errorf("BlogPosting JSON-LD missing")
	}
	if !strings.Contains(got, `href="/blog/tag/coffee/"`) {
		t.Errorf("tag link missing")
	}
}

func TestHomeEmptyStates(t *testing.T) {
	got := render(t, Home(HomeData{Site: testSite}))
	if !strings.Contains(got, "No posts yet") {
		t.Errorf("expected empty recent-posts state")
	}
	if !strings.Contains(got, "about page is not available") {
		t.Errorf("expected empty about state")
	}
}

func TestHomeShowsCardsAndAbout(t *testing.T) {
	about := content.Page{Slug: "about", Title: "About", CustomExcerpt: "I write novels."}
	got := render(t, Home(HomeData{
		Site:   testSite,
		Recent: Cards([]content.Post{samplePost()}),
		About:  &about,
		Works:  []Work{{Title: "Whispers in the Garden", Status: "Coming Soon"}},
	}))
	for _, want := range []string{"Coffee Shop Chronicles", "I write novels.", "Whispers in the Garden", "January 10, 2024"} {
		if !strings.Contains(got, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestBlogPagination(t *testing.T) {
	prev, next := 1, 3
	got := render(t, Blog(BlogData{
		Site:       testSite,
		Posts:      Cards([]content.Post{samplePost()}),
		Pagination: &content.Pagination{Page: 2, Pages: 3, Limit: 1, Total: 3, Prev: &prev, Next: &next},
		BasePath:   "/blog/tag/coffee/",
		ActiveTag:  "coffee",
		Tags:       []content.Tag{{Name: "Coffee", Slug: "coffee", Count: content.TagCount{Posts: 3}}},
	}))
	if !strings.Contains(got, `href="/blog/tag/coffee/"`) {
		t.Errorf("previous page should link to the first page path: %q", got)
	}
	if !strings.Contains(got, `href="/blog/tag/coffee/?page=3"`) {
		t.Errorf("next page link missing: %q", got)
	}
	if !strings.Contains(got, "Page 2 of 3") {
		t.Errorf("page indicator missing")
	}
	if !strings.Contains(got, "tag tag-active") {
		t.Errorf("active tag class missing")
	}
}

func TestSearchPage(t *testing.T) {
	none := render(t, Search(SearchData{Site: testSite}))
	if strings.Contains(none, "No posts matched") {
		t.Errorf("empty search form should not show a no-results message")
	}
	miss := render(t, Search(SearchData{Site: testSite, Query: "zebra"}))
	if !strings.Contains(miss, "No posts matched") {
		t.Errorf("expected no-results message")
	}
}

func TestErrorPages(t *testing.T) {
	if got := render(t, NotFound(testSite)); !strings.Contains(got, "Page not found") {
		t.Errorf("NotFound output = %q", got)
	}
	if got := render(t, ServerError(testSite)); !strings.Contains(got, "Something went wrong") {
		t.Errorf("ServerError output = %q", got)
	}
}

func TestNewPostCard(t *testing.T) {
	card := NewPostCard(samplePost())
	if card.Summary != "There's something magical about coffee shops." {
		t.Errorf("Summary = %q", card.Summary)
	}
	if card.ReadingTime != 1 {
		t.Errorf("ReadingTime = %d, want 1", card.ReadingTime)
	}
}
