package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuthContext is the opaque identity the upstream gateway resolves for us:
// a tenant and a role, nothing more. This service never authenticates.
type AuthContext struct {
	TenantID string
	Role     string
}

const (
	authContextKey = "auth_context"

	HeaderTenantID = "X-Tenant-ID"
	HeaderRole     = "X-Role"

	RoleViewer = "viewer"
)

// TenantContext extracts the gateway-injected tenant headers. Requests
// without a tenant are rejected before any handler runs.
func TenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID := c.Request().Header.Get(HeaderTenantID)
		if tenantID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing tenant")
		}

		role := c.Request().Header.Get(HeaderRole)
		if role == "" {
			role = "member"
		}

		c.Set(authContextKey, AuthContext{TenantID: tenantID, Role: role})
		return next(c)
	}
}

func FromContext(c echo.Context) AuthContext {
	if auth, ok := c.Get(authContextKey).(AuthContext); ok {
		return auth
	}
	return AuthContext{}
}

// RequireWriter guards mutating routes: viewers are read-only.
func RequireWriter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if FromContext(c).Role == RoleViewer {
			return echo.NewHTTPError(http.StatusForbidden, "role is not allowed to perform this action")
		}
		return next(c)
	}
}
