package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user for rate-limit and cache
// keys. Requests that did not pass JWTAuth are "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get(ContextUserID).(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
