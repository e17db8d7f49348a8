package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string for use in
// keys and log fields, or "anon" before JWTAuth has run.
func currentUserID(c echo.Context) string {
	if id, ok := c.Get(ContextUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
