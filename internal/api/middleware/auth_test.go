package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type stubAuthorizer struct {
	principal *domain.Principal
	err       error
	gotToken  string
}

func (s *stubAuthorizer) Authorize(_ context.Context, token string) (*domain.Principal, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func alice() *domain.Principal {
	return &domain.Principal{
		User:    &domain.User{ID: "u1", Name: "alice", Role: domain.RoleUser},
		Session: &domain.Session{ID: "s1", UserID: "u1"},
		Token:   "tok",
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authz := &stubAuthorizer{principal: alice()}
	called := false
	handler := Authenticate(authz)(func(c echo.Context) error {
		called = true
		p, ok := PrincipalFrom(c)
		if !ok || p.User.ID != "u1" {
			t.Fatalf("principal not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if authz.gotToken != "tok" {
		t.Fatalf("expected token %q, got %q", "tok", authz.gotToken)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_BadHeaders(t *testing.T) {
	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Token abc",
		"no token":     "Bearer",
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			authz := &stubAuthorizer{principal: alice()}
			handler := Authenticate(authz)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if authz.gotToken != "" {
				t.Fatalf("authorizer must not be called")
			}
		})
	}
}

func TestAuthenticate_AuthorizerRejects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authz := &stubAuthorizer{err: domain.ErrNoActiveSession}
	handler := Authenticate(authz)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, ok := PrincipalFrom(c); ok {
		t.Fatalf("principal must not be set")
	}
}
