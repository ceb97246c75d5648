package content

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"
)

const fixtureName = "fixture"

var fixtureAuthor = Author{ID: "1", Name: "Author Name", Slug: "author-name", Twitter: "@authorhandle"}

var (
	tagWriting     = Tag{ID: "1", Name: "Writing", Slug: "writing"}
	tagInspiration = Tag{ID: "2", Name: "Inspiration", Slug: "inspiration"}
	tagCoffee      = Tag{ID: "3", Name: "Coffee", Slug: "coffee"}
	tagCharacters  = Tag{ID: "4", Name: "Characters", Slug: "characters"}
	tagThemes      = Tag{ID: "5", Name: "Themes", Slug: "themes"}
)

func fixtureTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixturePosts is ordered newest first.
var fixturePosts = []Post{
	{
		ID:            "1",
		Title:         "The Art of Storytelling: Finding Magic in Everyday Moments",
		Slug:          "art-of-storytelling",
		Excerpt:       "Every great story begins with a simple moment of connection. Whether it's the way sunlight filters through an old window or the conversation overheard in a coffee shop, inspiration is everywhere if we know how to look.",
		CustomExcerpt: "Every great story begins with a simple moment of connection.",
		HTML: "<p>Every great story begins with a simple moment of connection. Whether it's the way sunlight filters through an old window or the conversation overheard in a coffee shop, inspiration is everywhere if we know how to look.</p>" +
			"<p>As writers, we're collectors of these moments, gathering them like precious stones to weave into the tapestries of our narratives.</p>",
		PublishedAt:     fixtureTime("2024-01-15T10:00:00Z"),
		UpdatedAt:       fixtureTime("2024-01-15T10:00:00Z"),
		MetaDescription: "Exploring how everyday moments become the foundation of great storytelling.",
		Tags:            []Tag{tagWriting, tagInspiration},
		Authors:         []Author{fixtureAuthor},
	},
	{
		ID:            "2",
		Title:         "Coffee Shop Chronicles: Where Stories Are Born",
		Slug:          "coffee-shop-chronicles",
		Excerpt:       "There's something magical about coffee shops - the gentle hum of conversation, the aroma of freshly ground beans, and the stories that unfold in every corner.",
		CustomExcerpt: "There's something magical about coffee shops.",
		HTML: "<p>There's something magical about coffee shops - the gentle hum of conversation, the aroma of freshly ground beans, and the stories that unfold in every corner.</p>" +
			"<p>I've written three novels sitting in various coffee shops around the city, each one teaching me something new about the human experience.</p>",
		PublishedAt:     fixtureTime("2024-01-10T09:00:00Z"),
		UpdatedAt:       fixtureTime("2024-01-10T09:00:00Z"),
		MetaDescription: "Why coffee shops have become the modern writer's sanctuary.",
		Tags:            []Tag{tagCoffee, tagWriting},
		Authors:         []Author{fixtureAuthor},
	},
	{
		ID:            "3",
		Title:         "The Power of Second Chances in Literature",
		Slug:          "power-of-second-chances",
		Excerpt:       "Some of the most compelling characters are those who get a second chance - at love, at life, at becoming who they were meant to be.",
		CustomExcerpt: "Some of the most compelling characters are those who get a second chance.",
		HTML: "<p>Some of the most compelling characters are those who get a second chance - at love, at life, at becoming who they were meant to be.</p>" +
			"<p>In my upcoming novel, the protagonist learns that second chances aren't just given - they're earned through courage, vulnerability, and the willingness to change.</p>",
		PublishedAt:     fixtureTime("2024-01-05T08:00:00Z"),
		UpdatedAt:       fixtureTime("2024-01-05T08:00:00Z"),
		MetaDescription: "Exploring themes of redemption and growth in contemporary fiction.",
		Tags:            []Tag{tagCharacters, tagThemes},
		Authors:         []Author{fixtureAuthor},
	},
}

var fixtureTags = []Tag{
	withCount(tagWriting, 2),
	withCount(tagInspiration, 1),
	withCount(tagCoffee, 1),
	withCount(tagCharacters, 1),
	withCount(tagThemes, 1),
}

func withCount(t Tag, n int) Tag {
	t.Count.Posts = n
	return t
}

var fixtureAbout = Page{
	ID:    "about",
	Title: "About Author Name",
	Slug:  "about",
	HTML: "<p>Welcome to my literary world. I'm a storyteller at heart, weaving tales that explore the beauty in everyday moments and the connections that bind us together.</p>" +
		"<p>With a background in literature and a passion for coffee-shop conversations, I find inspiration in the quiet moments of life—the way morning light filters through curtains, the sound of rain on old windows, and the stories people carry in their hearts.</p>" +
		"<p>My writing journey began with handwritten journals and has evolved into published novels that celebrate human resilience, love, and the power of second chances.</p>",
	Excerpt: "I'm a storyteller at heart, weaving tales that explore the beauty in everyday moments and the connections that bind us together. " +
		"With a background in literature and a passion for coffee-shop conversations, I find inspiration in the quiet moments of life—the way morning light filters through curtains, the sound of rain on old windows, and the stories people carry in their hearts.\n\n" +
		"My writing journey began with handwritten journals and has evolved into published novels that celebrate human resilience, love, and the power of second chances. " +
		"When I'm not writing, you'll find me curled up with a good book, exploring local coffee shops, or taking long walks in nature.",
	PublishedAt:     fixtureTime("2024-01-01T00:00:00Z"),
	UpdatedAt:       fixtureTime("2024-01-01T00:00:00Z"),
	MetaDescription: "Learn more about the author behind the stories.",
	Authors:         []Author{fixtureAuthor},
}

var fixtureSettings = SiteSettings{
	Title:       "Author Portfolio",
	Description: "A professional author portfolio showcasing books, blog posts, and literary work",
	URL:         "http://localhost:3000",
	Twitter:     "@authorhandle",
}

// FixtureBackend serves the built-in sample dataset. It is used whenever no
// Ghost site is configured and is safe for concurrent use.
type FixtureBackend struct {
	posts []Post
	pages []Page
	tags  []Tag
}

// NewFixtureBackend returns a backend over the built-in dataset.
func NewFixtureBackend() *FixtureBackend {
	return &FixtureBackend{
		posts: fixturePosts,
		pages: []Page{fixtureAbout},
		tags:  fixtureTags,
	}
}

func (f *FixtureBackend) Name() string { return fixtureName }

// published returns a fresh slice of published posts, newest first.
func (f *FixtureBackend) published() []Post {
	out := make([]Post, 0, len(f.posts))
	for _, p := range f.posts {
		if p.Published() {
			out = append(out, clonePost(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func (f *FixtureBackend) BrowsePosts(_ context.Context, q PostQuery) (PostList, error) {
	posts := f.published()
	if q.Tag != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if p.HasTag(q.Tag) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	page, meta := Paginate(posts, q.Page, q.Limit)
	return PostList{Posts: page, Meta: &meta}, nil
}

func (f *FixtureBackend) ReadPost(_ context.Context, slug string) (Post, error) {
	for _, p := range f.published() {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (f *FixtureBackend) RelatedPosts(_ context.Context, excludeSlug string, tagSlugs []string, limit int) ([]Post, error) {
	related := []Post{}
	for _, p := range f.published() {
		if p.Slug == excludeSlug {
			continue
		}
		for _, slug := range tagSlugs {
			if p.HasTag(slug) {
				related = append(related, p)
				break
			}
		}
	}
	return head(related, limit), nil
}

func (f *FixtureBackend) RecentPosts(_ context.Context, limit int) ([]Post, error) {
	return head(f.published(), limit), nil
}

func (f *FixtureBackend) ReadPage(_ context.Context, slug string) (Page, error) {
	for _, p := range f.pages {
		if p.Slug == slug {
			return Page(clonePost(Post(p))), nil
		}
	}
	return Page{}, ErrNotFound
}

func (f *FixtureBackend) BrowsePages(context.Context) ([]Page, error) {
	out := make([]Page, len(f.pages))
	for i, p := range f.pages {
		out[i] = Page(clonePost(Post(p)))
	}
	return out, nil
}

func (f *FixtureBackend) BrowseTags(context.Context) ([]Tag, error) {
	out := make([]Tag, len(f.tags))
	copy(out, f.tags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count.Posts > out[j].Count.Posts
	})
	return out, nil
}

func (f *FixtureBackend) SearchPosts(_ context.Context, query string, limit int) ([]Post, error) {
	return head(matchPosts(f.published(), query), limit), nil
}

func (f *FixtureBackend) Settings(context.Context) (SiteSettings, error) {
	return fixtureSettings, nil
}

// clonePost copies the nested slices of p so callers cannot reach the
// package-level dataset through them.
func clonePost(p Post) Post {
	p.Tags = slices.Clone(p.Tags)
	p.Authors = slices.Clone(p.Authors)
	return p
}

// matchPosts keeps posts whose title or excerpt contains query, ignoring case.
func matchPosts(posts []Post, query string) []Post {
	q := strings.ToLower(query)
	out := []Post{}
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			(p.Excerpt != "" && strings.Contains(strings.ToLower(p.Excerpt), q)) {
			out = append(out, p)
		}
	}
	return out
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
