package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// SessionRepository persists login sessions. Sessions are never deleted.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	// FindLatestActive returns the most recently created session for userID
	// with no logout timestamp, or domain.ErrNoActiveSession.
	FindLatestActive(ctx context.Context, userID string) (*domain.Session, error)
	SetLastActivity(ctx context.Context, sessionID string, at time.Time) error
	SetLogout(ctx context.Context, sessionID string, at time.Time) error
	// EndActive stamps a logout time on every active session of userID except
	// keepID. It returns the number of sessions ended.
	EndActive(ctx context.Context, userID, keepID string, at time.Time) (int64, error)
	// ListByUser returns sessions for userID, newest login first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	// ListAll returns every session, newest login first.
	ListAll(ctx context.Context) ([]*domain.Session, error)
}
