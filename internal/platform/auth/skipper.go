package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists routes reachable without a bearer token: the
// credential endpoints themselves and the health checks. They
// still pass through tenant resolution, which falls back to the
// X-Tenant-ID header, the query parameter or the default tenant.
var publicPaths = map[string]bool{
	"/health":               true,
	"/health/db":            true,
	"/api/v1/auth/register": true,
	"/api/v1/auth/login":    true,
}

// Public reports whether the matched route skips the token check.
func Public(c echo.Context) bool {
	return publicPaths[c.Path()]
}
