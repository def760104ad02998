package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// OrderRepository persists immutable orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	// FindPaidByPaymentReference returns the paid order created for ref, or
	// domain.ErrOrderNotFound.
	FindPaidByPaymentReference(ctx context.Context, ref string) (*domain.Order, error)
}
