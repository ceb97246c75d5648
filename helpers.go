package authorsite

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// queryPage reads ?page=, treating missing or malformed values as page 1.
func queryPage(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
