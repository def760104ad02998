// Package identity is the in-house identity provider: bcrypt-hashed
// credentials and HS256 bearer tokens with server-side revocation.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// ErrCredentialNotFound is returned by a CredentialStore for unknown emails.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is one account known to the provider.
type Credential struct {
	SubjectID    string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type CredentialStore interface {
	Create(ctx context.Context, c Credential) error
	FindByEmail(ctx context.Context, email string) (*Credential, error)
}

// RevocationList remembers revoked token ids until the token would have
// expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Provider implements ports.IdentityProvider.
type Provider struct {
	creds   CredentialStore
	revoked RevocationList
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewProvider(creds CredentialStore, revoked RevocationList, secret string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{
		creds:   creds,
		revoked: revoked,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %w", domain.ErrInvalidInput, err)
	}

	subject := uuid.NewString()
	err = p.creds.Create(ctx, Credential{
		SubjectID:    subject,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGateway, err)
	}
	return subject, nil
}

func (p *Provider) IssueCredential(ctx context.Context, email, password string) (string, string, error) {
	cred, err := p.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return "", "", domain.ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("%w: %w", domain.ErrGateway, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", "", domain.ErrInvalidCredentials
	}

	token, err := p.generateToken(cred.SubjectID)
	if err != nil {
		return "", "", fmt.Errorf("%w: sign token: %w", domain.ErrGateway, err)
	}
	return cred.SubjectID, token, nil
}

func (p *Provider) VerifyCredential(ctx context.Context, token string) (string, error) {
	claims, err := p.parse(token)
	if err != nil {
		return "", err
	}

	revoked, err := p.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("%w: revocation check: %w", domain.ErrGateway, err)
	}
	if revoked {
		return "", fmt.Errorf("%w: credential revoked", domain.ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// RevokeCredential blocks the token for the rest of its lifetime.
func (p *Provider) RevokeCredential(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}

	remaining := claims.ExpiresAt.Time.Sub(p.now())
	if remaining <= 0 {
		return nil
	}
	if err := p.revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		return fmt.Errorf("%w: revoke: %w", domain.ErrGateway, err)
	}
	return nil
}

func (p *Provider) generateToken(subject string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(p.secret)
}

func (p *Provider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: incomplete token", domain.ErrUnauthenticated)
	}
	return claims, nil
}
