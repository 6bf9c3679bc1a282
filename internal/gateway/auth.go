package gateway

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// keyAuth gates routes behind an X-API-Key header. An empty configured key
// disables the check entirely. The comparison is constant-time.
func keyAuth(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			supplied := c.Request().Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or missing API key"})
			}
			return next(c)
		}
	}
}
