package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// AuthService implements registration, login and logout on top of the
// identity provider and the session manager.
type AuthService struct {
	identity ports.IdentityProvider
	users    ports.UserRepository
	sessions ports.SessionManager
	log      zerolog.Logger
}

func NewAuthService(identity ports.IdentityProvider, users ports.UserRepository, sessions ports.SessionManager, log zerolog.Logger) *AuthService {
	return &AuthService{identity: identity, users: users, sessions: sessions, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	subject, err := s.identity.SignUp(ctx, email, in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		SubjectID: subject,
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.log.Error().Err(err).Str("subject", subject).Msg("identity created but user record failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return user, nil
}

// Login exchanges credentials for a bearer token and opens a new session.
func (s *AuthService) Login(ctx context.Context, email, password, sourceAddress string) (*ports.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	subject, token, err := s.identity.IssueCredential(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	user, err := s.users.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	sess, err := s.sessions.CreateSession(ctx, user.ID, sourceAddress)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &ports.LoginResult{Token: token, User: user, Session: sess}, nil
}

// Logout ends the caller's session, then revokes the bearer credential.
// The session stays ended even if revocation fails.
func (s *AuthService) Logout(ctx context.Context, p *domain.Principal) error {
	if p == nil || p.Session == nil {
		return domain.ErrUnauthenticated
	}
	if err := s.sessions.EndSession(ctx, p.Session); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := s.identity.RevokeCredential(ctx, p.Token); err != nil {
		s.log.Error().Err(err).Str("session_id", p.Session.ID).Msg("credential revoke failed")
		if !errors.Is(err, domain.ErrGateway) {
			err = fmt.Errorf("%w: %w", domain.ErrGateway, err)
		}
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", p.Session.UserID).Str("session_id", p.Session.ID).Msg("logged out")
	return nil
}
