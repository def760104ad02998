package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func serveLimited(t *testing.T, rl *RateLimiter, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-payment-intent", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		p := alice()
		p.User.ID = userID
		SetPrincipal(c, p)
	}

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRateLimiter_PerUser(t *testing.T) {
	rl := NewRateLimiter(PerMinute(2), zerolog.Nop())
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		if rec := serveLimited(t, rl, "u1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := serveLimited(t, rl, "u1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// Another user has an independent bucket.
	if rec := serveLimited(t, rl, "u2"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for another user, got %d", rec.Code)
	}
}

func TestRateLimiter_FallsBackToClientIP(t *testing.T) {
	rl := NewRateLimiter(PerMinute(1), zerolog.Nop())
	defer rl.Stop()

	serveLimited(t, rl, "")
	if rec := serveLimited(t, rl, ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rl.Len() != 1 {
		t.Fatalf("expected one tracked key, got %d", rl.Len())
	}
}

func TestRateLimiter_CleanupDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute}, zerolog.Nop())
	defer rl.Stop()

	serveLimited(t, rl, "u1")
	rl.cleanup(time.Now())
	if rl.Len() != 1 {
		t.Fatalf("fresh entry must survive cleanup")
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.Len() != 0 {
		t.Fatalf("idle entry must be dropped, %d left", rl.Len())
	}
}
