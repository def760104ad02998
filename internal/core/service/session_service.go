package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// SessionService implements ports.SessionManager.
type SessionService struct {
	repo ports.SessionRepository
	log  zerolog.Logger
	now  func() time.Time

	// singleActive ends the user's other active sessions on every new login.
	singleActive bool
}

// SessionOption customises a SessionService.
type SessionOption func(*SessionService)

// WithSingleActiveSession makes CreateSession end previous active sessions.
func WithSingleActiveSession(enabled bool) SessionOption {
	return func(s *SessionService) { s.singleActive = enabled }
}

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

func NewSessionService(repo ports.SessionRepository, log zerolog.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession opens a new session with login and last-activity set to now.
func (s *SessionService) CreateSession(ctx context.Context, userID, sourceAddress string) (*domain.Session, error) {
	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Session{
		UserID:        userID,
		LoginAt:       now,
		LastActivity:  now,
		SourceAddress: sourceAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.singleActive {
		n, err := s.repo.EndActive(ctx, userID, created.ID, now)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to end previous sessions")
		} else if n > 0 {
			s.log.Info().Str("user_id", userID).Int64("ended", n).Msg("previous sessions ended")
		}
	}

	metrics.SessionsCreatedTotal.Inc()
	s.log.Info().Str("user_id", userID).Str("session_id", created.ID).Msg("session created")
	return created, nil
}

// ResolveActiveSession returns the most recently created session without a
// logout timestamp.
func (s *SessionService) ResolveActiveSession(ctx context.Context, userID string) (*domain.Session, error) {
	sess, err := s.repo.FindLatestActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return sess, nil
}

// Touch records activity on the session. Concurrent touches are last-write-wins.
func (s *SessionService) Touch(ctx context.Context, sess *domain.Session) error {
	now := s.now()
	if err := s.repo.SetLastActivity(ctx, sess.ID, now); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	sess.LastActivity = now
	return nil
}

// EndSession stamps the logout time. A second call overwrites the timestamp.
func (s *SessionService) EndSession(ctx context.Context, sess *domain.Session) error {
	now := s.now()
	if err := s.repo.SetLogout(ctx, sess.ID, now); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	sess.LogoutAt = &now
	return nil
}

func (s *SessionService) ListForUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionService) ListAll(ctx context.Context) ([]*domain.Session, error) {
	sessions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all sessions: %w", err)
	}
	return sessions, nil
}
