package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"safeHTML":  SafeHTML,
	"date":      FormatDate,
	"tagClass":  TagClass,
	"tagPath":   TagPath,
	"postPath":  PostPath,
	"byline":    Byline,
	"websiteLD": WebsiteJsonLD,
	"postingLD": BlogPostingJsonLD,
	"deref":     func(p *int) int { return *p },
	"lower":     strings.ToLower,
}

// pages maps a page template name to its layout-backed template set.
var pages = mustParse()

func mustParse() map[string]*template.Template {
	base := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html", "templates/partials/*.html"))

	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, name))
		out[strings.TrimSuffix(name[len("templates/pages/"):], ".html")] = t
	}
	return out
}

// page returns a component that renders the named page inside the layout.
func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout.html", data)
	})
}

func Home(d HomeData) templ.Component       { return page("home", d) }
func About(d AboutData) templ.Component     { return page("about", d) }
func Contact(d ContactData) templ.Component { return page("contact", d) }
func Blog(d BlogData) templ.Component       { return page("blog", d) }
func Post(d PostData) templ.Component       { return page("post", d) }
func Search(d SearchData) templ.Component   { return page("search", d) }

type errorData struct {
	Site Site
	Meta PageMeta
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return page("notfound", errorData{Site: site, Meta: PageMeta{Title: "Page not found", OGType: "website"}})
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return page("error", errorData{Site: site, Meta: PageMeta{Title: "Something went wrong", OGType: "website"}})
}
