package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// CartRepository persists one cart document per user.
type CartRepository interface {
	// Get returns the user's cart or domain.ErrCartNotFound.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Save writes the cart lines if the stored version still equals
	// cart.Version (0 means "not stored yet") and advances cart.Version.
	// A lost race yields domain.ErrCartVersionMismatch.
	Save(ctx context.Context, cart *domain.Cart) error
	// Clear removes every line if the stored version equals expectedVersion.
	// The cart document itself is kept.
	Clear(ctx context.Context, userID string, expectedVersion int64) error
}
