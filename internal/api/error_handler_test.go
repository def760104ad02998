package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "too many requests"), http.StatusTooManyRequests, "too many requests"},
		{"no session", fmt.Errorf("authorize: %w", domain.ErrNoActiveSession), http.StatusUnauthorized, "no active session"},
		{"provider outage", fmt.Errorf("authorize: %w: %w", domain.ErrUnauthenticated, domain.ErrGateway), http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"line not found", fmt.Errorf("update cart: %w", domain.ErrLineNotFound), http.StatusNotFound, "item not found in cart"},
		{"empty cart", fmt.Errorf("finalize: %w", domain.ErrEmptyCart), http.StatusBadRequest, "cart is empty"},
		{"bare invalid input", fmt.Errorf("finalize: %w: payment reference is required", domain.ErrInvalidInput), http.StatusBadRequest, "finalize: invalid input: payment reference is required"},
		{"payment reused", fmt.Errorf("finalize: %w", domain.ErrPaymentAlreadyUsed), http.StatusConflict, "payment already used for an order"},
		{"lock busy", domain.ErrLockNotAcquired, http.StatusConflict, "another operation is in progress for this user"},
		{"gateway", fmt.Errorf("issue intent: %w: card_declined", domain.ErrGateway), http.StatusBadGateway, "payment or identity provider unavailable"},
		{"unexpected", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusAccepted || rec.Body.Len() != 0 {
		t.Fatalf("committed response must not be rewritten")
	}
}
