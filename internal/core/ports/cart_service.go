package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// CartItemView is a cart line resolved against current catalog data.
// Product is nil when the product no longer resolves.
type CartItemView struct {
	ProductID string
	Product   *domain.Product
	Quantity  int
	UnitPrice domain.Money
	LineTotal domain.Money
}

// CartView is the display form of a cart. Total uses the price snapshots.
type CartView struct {
	UserID string
	Items  []CartItemView
	Total  domain.Money
}

type CartService interface {
	AddLine(ctx context.Context, userID, productID string, quantity int) (*CartView, error)
	SetLineQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error)
	RemoveLine(ctx context.Context, userID, productID string) (*CartView, error)
	Read(ctx context.Context, userID string) (*CartView, error)
}
