package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// ProductCatalog is the read side of the external product catalog.
type ProductCatalog interface {
	// GetProduct returns the product or domain.ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}
