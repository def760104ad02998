package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// PaymentGateway is the external payment processor. Amounts are minor units.
type PaymentGateway interface {
	// CreateIntent creates a payment intent tagged with the owning user.
	// idempotencyKey may be empty.
	CreateIntent(ctx context.Context, amount domain.Money, userID, idempotencyKey string) (*domain.PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error)
}

// IssuedIntent is what the idempotency cache remembers per pay-session token.
type IssuedIntent struct {
	UserID       string       `json:"user_id"`
	Amount       domain.Money `json:"amount"`
	IntentID     string       `json:"intent_id"`
	ClientSecret string       `json:"client_secret"`
}

// IntentCache maps client pay-session tokens to previously issued intents.
type IntentCache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, token string) (*IssuedIntent, error)
	Put(ctx context.Context, token string, intent IssuedIntent) error
}
