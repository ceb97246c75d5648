package authorsite

import (
	"bytes"
	"encoding/xml"

	"github.com/KylerLong-dev/author-site/content"
	"github.com/KylerLong-dev/author-site/views"
)

const sitemapPostLimit = 500

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func lastMod(p content.Post) string {
	t := p.UpdatedAt
	if t.IsZero() {
		t = p.PublishedAt
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func (a *App) renderSitemap(posts []content.Post, pages []content.Page, tags []content.Tag) ([]byte, error) {
	base := a.Config.URL
	lastMods := make(map[string]string, len(pages))
	for _, p := range pages {
		lastMods[p.Slug] = lastMod(content.Post(p))
	}

	urls := []sitemapURL{{Loc: views.BuildURL(base)}}
	// CMS pages other than these have no route and are left out.
	for _, slug := range []string{"about", "blog", "contact"} {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, slug), LastMod: lastMods[slug]})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "blog", p.Slug), LastMod: lastMod(p)})
	}
	for _, t := range tags {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "blog", "tag", t.Slug)})
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
