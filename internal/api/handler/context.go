package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/domain"
)

// principal extracts the caller injected by the Authenticate middleware and
// fails fast when the route was mounted without it.
func principal(c echo.Context) (*domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
