package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// newTestContext builds an echo context with the validator registered and,
// when p is non-nil, an authenticated principal.
func newTestContext(method, target, body string, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.SetPrincipal(c, p)
	}
	return c, rec
}

func testPrincipal() *domain.Principal {
	return &domain.Principal{
		User:    &domain.User{ID: "u1", Name: "alice", Email: "alice@example.com", Role: domain.RoleUser},
		Session: &domain.Session{ID: "s1", UserID: "u1"},
		Token:   "tok",
	}
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password, source string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, p *domain.Principal) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password, source string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password, source)
}

func (s *stubAuthService) Logout(ctx context.Context, p *domain.Principal) error {
	return s.logoutFn(ctx, p)
}

type stubCartService struct {
	view    *ports.CartView
	err     error
	calls   int
	lastQty int
	lastID  string
}

func (s *stubCartService) record(productID string, qty int) (*ports.CartView, error) {
	s.calls++
	s.lastID, s.lastQty = productID, qty
	return s.view, s.err
}

func (s *stubCartService) AddLine(_ context.Context, _, productID string, quantity int) (*ports.CartView, error) {
	return s.record(productID, quantity)
}

func (s *stubCartService) SetLineQuantity(_ context.Context, _, productID string, quantity int) (*ports.CartView, error) {
	return s.record(productID, quantity)
}

func (s *stubCartService) RemoveLine(_ context.Context, _, productID string) (*ports.CartView, error) {
	return s.record(productID, 0)
}

func (s *stubCartService) Read(_ context.Context, _ string) (*ports.CartView, error) {
	return s.record("", 0)
}

type stubPaymentService struct {
	secret string
	err    error
	got    *ports.IssueIntentInput
}

func (s *stubPaymentService) IssueIntent(_ context.Context, in ports.IssueIntentInput) (string, error) {
	s.got = &in
	return s.secret, s.err
}

type stubOrderService struct {
	result  *ports.FinalizeResult
	orders  []*domain.Order
	err     error
	lastRef string
}

func (s *stubOrderService) Finalize(_ context.Context, _, ref string) (*ports.FinalizeResult, error) {
	s.lastRef = ref
	return s.result, s.err
}

func (s *stubOrderService) List(_ context.Context, _ string) ([]*domain.Order, error) {
	return s.orders, s.err
}
