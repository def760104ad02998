package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/service"
)

// RequireRole enforces role-based access control. It must run after
// Authenticate.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, _ := PrincipalFrom(c)
			if err := service.RequireRole(p, role); err != nil {
				return err
			}
			return next(c)
		}
	}
}
