package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// SessionManager owns the session lifecycle: active → ended.
type SessionManager interface {
	CreateSession(ctx context.Context, userID, sourceAddress string) (*domain.Session, error)
	ResolveActiveSession(ctx context.Context, userID string) (*domain.Session, error)
	Touch(ctx context.Context, s *domain.Session) error
	EndSession(ctx context.Context, s *domain.Session) error
	ListForUser(ctx context.Context, userID string) ([]*domain.Session, error)
	ListAll(ctx context.Context) ([]*domain.Session, error)
}
