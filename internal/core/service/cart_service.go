package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// CartService implements ports.CartService. Every mutation is a
// load-modify-save under the per-user lock and is persisted before returning.
type CartService struct {
	carts   ports.CartRepository
	catalog ports.ProductCatalog
	locker  ports.UserLocker
	log     zerolog.Logger
	now     func() time.Time
}

func NewCartService(carts ports.CartRepository, catalog ports.ProductCatalog, locker ports.UserLocker, log zerolog.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		locker:  locker,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AddLine adds quantity of productID. An existing line keeps its price snapshot.
func (s *CartService) AddLine(ctx context.Context, userID, productID string, quantity int) (*ports.CartView, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	var cart *domain.Cart
	err = withUserLock(ctx, s.locker, userID, func() error {
		c, err := s.loadOrNew(ctx, userID)
		if err != nil {
			return err
		}
		if err := c.AddLine(*product, quantity, s.now()); err != nil {
			return err
		}
		if err := s.save(ctx, c); err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	metrics.CartMutationsTotal.WithLabelValues("add").Inc()
	return s.view(ctx, cart), nil
}

// SetLineQuantity overwrites a line's quantity and re-prices it from the
// catalog when the product still resolves.
func (s *CartService) SetLineQuantity(ctx context.Context, userID, productID string, quantity int) (*ports.CartView, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	current, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.log.Warn().Err(err).Str("product_id", productID).Msg("product lookup failed, keeping price snapshot")
		}
		current = nil
	}

	var cart *domain.Cart
	err = withUserLock(ctx, s.locker, userID, func() error {
		c, err := s.carts.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrCartNotFound) {
				return domain.ErrLineNotFound
			}
			return err
		}
		if err := c.SetLineQuantity(productID, quantity, current); err != nil {
			return err
		}
		if err := s.save(ctx, c); err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}

	metrics.CartMutationsTotal.WithLabelValues("update").Inc()
	return s.view(ctx, cart), nil
}

// RemoveLine deletes productID from the cart; absent lines are a no-op.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID string) (*ports.CartView, error) {
	var cart *domain.Cart
	err := withUserLock(ctx, s.locker, userID, func() error {
		c, err := s.carts.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrCartNotFound) {
				cart = domain.NewCart(userID)
				return nil
			}
			return err
		}
		cart = c
		if _, ok := c.Line(productID); !ok {
			return nil
		}
		c.RemoveLine(productID)
		if err := s.save(ctx, c); err != nil {
			return err
		}
		metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	return s.view(ctx, cart), nil
}

// Read returns the cart resolved against the catalog. A user who never added
// anything gets an empty cart.
func (s *CartService) Read(ctx context.Context, userID string) (*ports.CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrCartNotFound) {
			return nil, fmt.Errorf("read cart: %w", err)
		}
		cart = domain.NewCart(userID)
	}
	return s.view(ctx, cart), nil
}

func (s *CartService) loadOrNew(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NewCart(userID), nil
	}
	return c, err
}

func (s *CartService) save(ctx context.Context, c *domain.Cart) error {
	c.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, c); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			s.log.Error().Err(err).Str("user_id", c.UserID).Msg("failed to persist cart")
		}
		return err
	}
	return nil
}

func (s *CartService) view(ctx context.Context, c *domain.Cart) *ports.CartView {
	items := make([]ports.CartItemView, 0, len(c.Lines))
	for _, l := range c.Lines {
		item := ports.CartItemView{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Total(),
		}
		p, err := s.catalog.GetProduct(ctx, l.ProductID)
		switch {
		case err == nil:
			item.Product = p
		case !errors.Is(err, domain.ErrProductNotFound):
			s.log.Warn().Err(err).Str("product_id", l.ProductID).Msg("product lookup failed for cart display")
		}
		items = append(items, item)
	}
	return &ports.CartView{UserID: c.UserID, Items: items, Total: c.Total()}
}
