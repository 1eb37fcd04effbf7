package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that should bypass authentication. These are
// infrastructure endpoints (health checks) and the endpoints used to obtain
// credentials in the first place.
var publicPaths = map[string]bool{
	"/health":                true,
	"/health/db":             true,
	"/api/v1/auth/register":  true,
	"/api/v1/auth/login":     true,
}

// Skipper returns true for requests whose path should skip authentication.
func Skipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path bypasses auth middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
