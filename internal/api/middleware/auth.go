package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

const principalKey = "principal"

// Authenticate resolves the bearer credential into a principal and injects it
// into context. Every failure surfaces as 401.
func Authenticate(authz ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			p, err := authz.Authorize(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal injected by Authenticate.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(principalKey).(*domain.Principal)
	return p, ok && p != nil && p.User != nil
}

// SetPrincipal injects p into c. Used by tests and internal callers.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}
