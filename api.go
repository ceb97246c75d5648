package authorsite

import (
	"net/http"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/KylerLong-dev/author-site/content"
)

// apiResponse is the JSON envelope of every /api endpoint. Status mirrors
// content.Status so clients can tell "nothing found" from "CMS down".
type apiResponse struct {
	Status string              `json:"status"`
	Data   any                 `json:"data"`
	Meta   *content.Pagination `json:"meta,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func apiStatus(s content.Status) int {
	switch s {
	case content.StatusInvalid:
		return http.StatusBadRequest
	case content.StatusFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

func writeAPI[T any](c echo.Context, r content.Result[T], meta *content.Pagination) error {
	resp := apiResponse{Status: r.Status.String(), Data: r.Data, Meta: meta}
	switch r.Status {
	case content.StatusInvalid:
		resp.Error = r.Err.Error()
	case content.StatusFailed:
		resp.Error = "content unavailable"
	}
	return c.JSON(apiStatus(r.Status), resp)
}

// intParam parses an optional integer query parameter; absent means 0.
func intParam(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func (a *App) handleAPIPosts(c echo.Context) error {
	page, err := intParam(c, "page")
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	res := a.Content.ListPosts(c.Request().Context(), page, limit, c.QueryParam("tag"))
	return writeAPI(c, content.Result[[]content.Post]{Data: res.Data.Posts, Status: res.Status, Err: res.Err}, res.Data.Meta)
}

func (a *App) handleAPIPost(c echo.Context) error {
	res := a.Content.GetPost(c.Request().Context(), c.Param("slug"))
	if res.Status == content.StatusEmpty {
		return c.JSON(http.StatusNotFound, apiResponse{Status: res.Status.String(), Error: "post not found"})
	}
	return writeAPI(c, res, nil)
}

func (a *App) handleAPITags(c echo.Context) error {
	return writeAPI(c, a.Content.ListTags(c.Request().Context()), nil)
}

func (a *App) handleAPISearch(c echo.Context) error {
	if !a.searchLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many searches, try again shortly")
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	return writeAPI(c, a.Content.SearchPosts(c.Request().Context(), c.QueryParam("q"), limit), nil)
}

// jsonSerializer encodes API responses with goccy/go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := gojson.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := gojson.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
