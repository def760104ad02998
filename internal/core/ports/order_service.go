package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// FinalizeResult is the outcome of converting a cart into an order.
type FinalizeResult struct {
	Order         *domain.Order
	PaymentStatus domain.PaymentStatus
	// CartCleared is false when the order is paid but clearing the cart
	// failed after the order was persisted.
	CartCleared bool
}

type OrderService interface {
	Finalize(ctx context.Context, userID, paymentReference string) (*FinalizeResult, error)
	List(ctx context.Context, userID string) ([]*domain.Order, error)
}
