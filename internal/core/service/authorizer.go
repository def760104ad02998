package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// Authorizer gates every protected operation. The session record is the
// only source of truth for "logged in"; it is revalidated on each call.
type Authorizer struct {
	identity ports.IdentityProvider
	users    ports.UserRepository
	sessions ports.SessionManager
	log      zerolog.Logger
}

func NewAuthorizer(identity ports.IdentityProvider, users ports.UserRepository, sessions ports.SessionManager, log zerolog.Logger) *Authorizer {
	return &Authorizer{identity: identity, users: users, sessions: sessions, log: log}
}

// Authorize resolves token → subject → user → active session, touches the
// session, and returns the principal.
func (a *Authorizer) Authorize(ctx context.Context, token string) (*domain.Principal, error) {
	if strings.TrimSpace(token) == "" {
		metrics.AuthFailuresTotal.WithLabelValues("missing_credential").Inc()
		return nil, fmt.Errorf("authorize: %w: missing credential", domain.ErrUnauthenticated)
	}

	subject, err := a.identity.VerifyCredential(ctx, token)
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("rejected_credential").Inc()
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil, fmt.Errorf("authorize: %w", err)
		}
		// Provider outages also deny access; the caller sees 401 either way.
		a.log.Error().Err(err).Msg("identity provider verification failed")
		return nil, fmt.Errorf("authorize: %w: %w", domain.ErrUnauthenticated, err)
	}

	user, err := a.users.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
			return nil, fmt.Errorf("authorize: %w", domain.ErrUnknownUser)
		}
		return nil, fmt.Errorf("authorize: %w", err)
	}

	sess, err := a.sessions.ResolveActiveSession(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			metrics.AuthFailuresTotal.WithLabelValues("no_active_session").Inc()
		}
		return nil, fmt.Errorf("authorize: %w", err)
	}

	if err := a.sessions.Touch(ctx, sess); err != nil {
		a.log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to touch session")
	}

	return &domain.Principal{User: user, Session: sess, Token: token}, nil
}

// RequireRole checks an authenticated principal against a role.
func RequireRole(p *domain.Principal, role domain.Role) error {
	if p == nil || p.User == nil {
		return domain.ErrUnauthenticated
	}
	if p.User.Role != role {
		metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
		return domain.ErrForbidden
	}
	return nil
}
