package authorsite

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// The component is rendered into a buffer first so a template error never
// leaves a half-written page.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	body, err := renderBytes(c, cmp)
	if err != nil {
		return err
	}
	return c.HTMLBlob(code, body)
}

func renderBytes(c echo.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPage writes cmp and, when cacheable, stores the output in the page
// cache. Pages built from a failed content call are never cached.
func (a *App) renderPage(c echo.Context, cmp templ.Component, cacheable bool) error {
	body, err := renderBytes(c, cmp)
	if err != nil {
		return err
	}
	if cacheable {
		a.store(c, body, echo.MIMETextHTMLCharsetUTF8)
	}
	return c.HTMLBlob(http.StatusOK, body)
}
