package content

import "time"

// Post is a published blog entry as delivered by the CMS.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Excerpt         string    `json:"excerpt,omitempty"`
	CustomExcerpt   string    `json:"custom_excerpt,omitempty"`
	HTML            string    `json:"html,omitempty"`
	FeatureImage    string    `json:"feature_image,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	MetaDescription string    `json:"meta_description,omitempty"`
	Tags            []Tag     `json:"tags,omitempty"`
	Authors         []Author  `json:"authors,omitempty"`
}

// Published reports whether the post has a publication timestamp.
// Drafts in the fixture set carry a zero PublishedAt.
func (p Post) Published() bool {
	return !p.PublishedAt.IsZero()
}

// PrimaryAuthor returns the byline author, which is the first listed author.
func (p Post) PrimaryAuthor() (Author, bool) {
	if len(p.Authors) == 0 {
		return Author{}, false
	}
	return p.Authors[0], true
}

// HasTag reports whether the post carries the tag with the given slug.
func (p Post) HasTag(slug string) bool {
	for _, t := range p.Tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

// TagSlugs returns the slugs of the post's tags in order.
func (p Post) TagSlugs() []string {
	slugs := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		slugs = append(slugs, t.Slug)
	}
	return slugs
}

// Page is a standalone CMS page (about, colophon, ...). It shares the post
// shape but is addressed by a fixed slug and never listed chronologically.
type Page Post

// Tag labels posts. Count.Posts is informational and may lag behind the
// real number of posts carrying the tag.
type Tag struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	Count TagCount `json:"count"`
}

// TagCount mirrors the CMS "count" include.
type TagCount struct {
	Posts int `json:"posts"`
}

// Author is a post or page byline.
type Author struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Twitter      string `json:"twitter,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Bio          string `json:"bio,omitempty"`
}

// Pagination describes one page of a post listing. Prev and Next are nil
// when there is no such page.
type Pagination struct {
	Page  int  `json:"page"`
	Pages int  `json:"pages"`
	Limit int  `json:"limit"`
	Total int  `json:"total"`
	Prev  *int `json:"prev"`
	Next  *int `json:"next"`
}

// PostList is the result of a paginated post listing. Meta is nil when the
// listing could not be produced.
type PostList struct {
	Posts []Post      `json:"posts"`
	Meta  *Pagination `json:"meta"`
}

// SiteSettings holds site-wide metadata managed in the CMS.
type SiteSettings struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Logo        string `json:"logo,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
}
