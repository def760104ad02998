package ports

import "context"

// IdentityProvider verifies and issues bearer credentials. Rejections surface
// as domain.ErrUnauthenticated or domain.ErrInvalidCredentials; transport or
// storage failures as domain.ErrGateway.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (subjectID string, err error)
	IssueCredential(ctx context.Context, email, password string) (subjectID, token string, err error)
	VerifyCredential(ctx context.Context, token string) (subjectID string, err error)
	RevokeCredential(ctx context.Context, token string) error
}
