package authorsite

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KylerLong-dev/author-site/content"
	"github.com/KylerLong-dev/author-site/views"
)

// cacheable reports whether a page built from these results may be cached.
// Empty results are cacheable; failures are not.
func cacheable(statuses ...content.Status) bool {
	for _, s := range statuses {
		if s == content.StatusFailed {
			return false
		}
	}
	return true
}

func (a *App) meta(title, description, path, ogType, image string) views.PageMeta {
	if title == "" {
		title = a.Config.Name
	} else {
		title += " | " + a.Config.Name
	}
	if description == "" {
		description = a.Config.Description
	}
	if ogType == "" {
		ogType = "website"
	}
	return views.PageMeta{
		Title:       title,
		Description: description,
		URL:         views.BuildURL(a.Config.URL, path),
		OGType:      ogType,
		Image:       image,
	}
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		recent content.Result[[]content.Post]
		about  content.Result[*content.Page]
	)
	// Service calls never return errors; the group only joins them.
	var g errgroup.Group
	g.Go(func() error {
		recent = a.Content.GetRecentPosts(ctx, 3)
		return nil
	})
	g.Go(func() error {
		about = a.Content.GetPage(ctx, "about")
		return nil
	})
	_ = g.Wait()

	data := views.HomeData{
		Site:   a.Config.site(),
		Meta:   a.meta("", "", "", "", ""),
		Recent: views.Cards(recent.Data),
		About:  about.Data,
		Works:  a.Config.Works,
	}
	return a.renderPage(c, a.Views.Home(data), cacheable(recent.Status, about.Status))
}

func (a *App) handleAbout(c echo.Context) error {
	res := a.Content.GetPage(c.Request().Context(), "about")

	title, description, image := "About", "", ""
	if p := res.Data; p != nil {
		title, description, image = p.Title, p.MetaDescription, p.FeatureImage
	}
	data := views.AboutData{
		Site:  a.Config.site(),
		Meta:  a.meta(title, description, "about", "", image),
		Page:  res.Data,
		Works: a.Config.Works,
	}
	return a.renderPage(c, a.Views.About(data), cacheable(res.Status))
}

func (a *App) handleContact(c echo.Context) error {
	res := a.Content.GetSettings(c.Request().Context())
	description := ""
	if a.Config.Author != "" {
		description = "Get in touch with " + a.Config.Author + "."
	}
	data := views.ContactData{
		Site:     a.Config.site(),
		Meta:     a.meta("Contact", description, "contact", "", ""),
		Settings: res.Data,
	}
	return a.renderPage(c, a.Views.Contact(data), cacheable(res.Status))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.Param("tag")
	if tag == "" {
		// ?tag= is accepted for old links; the path form is canonical.
		if q := strings.TrimSpace(c.QueryParam("tag")); q != "" {
			target := views.TagPath(q)
			if p := c.QueryParam("page"); p != "" {
				target += "?page=" + url.QueryEscape(p)
			}
			return c.Redirect(http.StatusMovedPermanently, target)
		}
	}
	page := queryPage(c)
	ctx := c.Request().Context()

	var (
		list content.Result[content.PostList]
		tags content.Result[[]content.Tag]
	)
	var g errgroup.Group
	g.Go(func() error {
		list = a.Content.ListPosts(ctx, page, 0, tag)
		return nil
	})
	g.Go(func() error {
		tags = a.Content.ListTags(ctx)
		return nil
	})
	_ = g.Wait()
	if list.Status == content.StatusInvalid && tag != "" {
		return echo.ErrNotFound
	}

	basePath, title, path := "/blog/", "Blog", "blog"
	if tag != "" {
		basePath = views.TagPath(tag)
		title = "Posts tagged " + tagName(tags.Data, tag)
		path = strings.TrimPrefix(basePath, "/")
	}
	data := views.BlogData{
		Site:       a.Config.site(),
		Meta:       a.meta(title, "", path, "", ""),
		Posts:      views.Cards(list.Data.Posts),
		Pagination: list.Data.Meta,
		Tags:       tags.Data,
		ActiveTag:  tag,
		BasePath:   basePath,
	}
	return a.renderPage(c, a.Views.Blog(data), cacheable(list.Status, tags.Status))
}

func tagName(tags []content.Tag, slug string) string {
	for _, t := range tags {
		if t.Slug == slug {
			return t.Name
		}
	}
	return slug
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	res := a.Content.GetPost(ctx, c.Param("slug"))
	if res.Data == nil {
		if res.Status == content.StatusFailed {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "content unavailable")
		}
		return echo.ErrNotFound
	}
	post := *res.Data

	related := a.Content.GetRelatedPosts(ctx, post.Slug, post.Tags, 0)

	description := post.MetaDescription
	if description == "" {
		description = content.FormatExcerpt(post, 160)
	}
	data := views.PostData{
		Site:        a.Config.site(),
		Meta:        a.meta(post.Title, description, strings.TrimPrefix(views.PostPath(post.Slug), "/"), "article", post.FeatureImage),
		Post:        post,
		ReadingTime: content.ReadingTime(post.HTML),
		Related:     views.Cards(related.Data),
	}
	return a.renderPage(c, a.Views.Post(data), cacheable(res.Status, related.Status))
}

func (a *App) handleSearch(c echo.Context) error {
	if !a.searchLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many searches, try again shortly")
	}
	c.Response().Header().Set("Cache-Control", "no-store")

	q := strings.TrimSpace(c.QueryParam("q"))
	res := a.Content.SearchPosts(c.Request().Context(), q, 0)

	title := "Search"
	if q != "" {
		title = "Search: " + q
	}
	data := views.SearchData{
		Site:    a.Config.site(),
		Meta:    a.meta(title, "", "search", "", ""),
		Query:   q,
		Results: views.Cards(res.Data),
	}
	return Render(c, a.Views.Search(data))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		posts content.Result[content.PostList]
		pages content.Result[[]content.Page]
		tags  content.Result[[]content.Tag]
	)
	var g errgroup.Group
	g.Go(func() error {
		posts = a.Content.ListPosts(ctx, 1, sitemapPostLimit, "")
		return nil
	})
	g.Go(func() error {
		pages = a.Content.ListPages(ctx)
		return nil
	})
	g.Go(func() error {
		tags = a.Content.ListTags(ctx)
		return nil
	})
	_ = g.Wait()

	body, err := a.renderSitemap(posts.Data.Posts, pages.Data, tags.Data)
	if err != nil {
		return err
	}
	return a.writeXML(c, body, "application/xml; charset=utf-8", cacheable(posts.Status, pages.Status, tags.Status))
}

func (a *App) handleFeed(c echo.Context) error {
	res := a.Content.GetRecentPosts(c.Request().Context(), feedPostLimit)
	body, err := a.renderRSS(res.Data)
	if err != nil {
		return err
	}
	return a.writeXML(c, body, "application/rss+xml; charset=utf-8", cacheable(res.Status))
}

func (a *App) writeXML(c echo.Context, body []byte, contentType string, cacheable bool) error {
	if cacheable {
		a.store(c, body, contentType)
	}
	return c.Blob(http.StatusOK, contentType, body)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	if err := c.File(a.staticDir + "/robots.txt"); err == nil {
		return nil
	}
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\n\nSitemap: "+views.FileURL(a.Config.URL, "sitemap.xml")+"\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	site := a.Config.site()
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		if rerr := RenderStatus(c, http.StatusNotFound, a.Views.NotFound(site)); rerr != nil {
			a.Logger.Error("render not found page", zap.Error(rerr))
		}
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.Int("status", code),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		if rerr := RenderStatus(c, code, a.Views.ServerError(site)); rerr != nil {
			a.Logger.Error("render error page", zap.Error(rerr))
		}
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
