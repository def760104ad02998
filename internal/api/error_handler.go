package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// publicErrors are specific errors whose message is safe to show verbatim.
var publicErrors = []error{
	domain.ErrUnknownUser,
	domain.ErrNoActiveSession,
	domain.ErrUserNotFound,
	domain.ErrProductNotFound,
	domain.ErrLineNotFound,
	domain.ErrCartNotFound,
	domain.ErrOrderNotFound,
	domain.ErrEmptyCart,
	domain.ErrInvalidRole,
	domain.ErrInvalidQuantity,
	domain.ErrInvalidAmount,
	domain.ErrInvalidCredentials,
	domain.ErrUserExists,
	domain.ErrPaymentAlreadyUsed,
	domain.ErrCartVersionMismatch,
	domain.ErrLockNotAcquired,
	domain.ErrIdempotencyMismatch,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the domain error kinds to their HTTP status codes.
//   - Logs unexpected and gateway errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Unauthenticated is checked first: provider outages during
	// authorization wrap both it and ErrGateway.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, publicMessage(err, domain.ErrUnauthenticated)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, publicMessage(err, domain.ErrNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, publicMessage(err, err)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, publicMessage(err, domain.ErrConflict)
	case errors.Is(err, domain.ErrGateway):
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("upstream gateway error")
		return http.StatusBadGateway, "payment or identity provider unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func publicMessage(err, fallback error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback.Error()
}
