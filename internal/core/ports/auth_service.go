package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string
	User    *domain.User
	Session *domain.Session
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password, sourceAddress string) (*LoginResult, error)
	Logout(ctx context.Context, principal *domain.Principal) error
}

// Authorizer resolves a bearer credential into an authenticated principal.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Principal, error)
}
