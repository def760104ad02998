package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// UserRepository persists local user records keyed by identity subject.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindBySubject(ctx context.Context, subjectID string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
