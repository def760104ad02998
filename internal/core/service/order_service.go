package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// OrderService converts carts into orders.
type OrderService struct {
	carts   ports.CartRepository
	orders  ports.OrderRepository
	gateway ports.PaymentGateway
	locker  ports.UserLocker
	log     zerolog.Logger
	now     func() time.Time
}

func NewOrderService(carts ports.CartRepository, orders ports.OrderRepository, gateway ports.PaymentGateway, locker ports.UserLocker, log zerolog.Logger) *OrderService {
	return &OrderService{
		carts:   carts,
		orders:  orders,
		gateway: gateway,
		locker:  locker,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Finalize reads the payment status from the gateway, then, holding the
// user's lock, turns the cart into an order. The cart is cleared only when
// the payment succeeded. If the order is stored but the clear fails, the
// order stands and CartCleared is false; a retry with the same reference is
// rejected with ErrPaymentAlreadyUsed.
func (s *OrderService) Finalize(ctx context.Context, userID, paymentReference string) (res *ports.FinalizeResult, err error) {
	start := time.Now()
	defer func() {
		metrics.FinalizeDuration.WithLabelValues(finalizeResult(err)).Observe(time.Since(start).Seconds())
	}()

	ref := strings.TrimSpace(paymentReference)
	if ref == "" {
		return nil, fmt.Errorf("finalize: %w: payment reference is required", domain.ErrInvalidInput)
	}

	// The gateway call happens before the lock is taken.
	intent, err := s.gateway.GetIntent(ctx, ref)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("payment_ref", ref).Msg("payment status lookup failed")
		if !errors.Is(err, domain.ErrGateway) {
			err = fmt.Errorf("%w: %w", domain.ErrGateway, err)
		}
		return nil, fmt.Errorf("finalize: %w", err)
	}
	status := intent.Status.OrderStatus()
	if intent.UserID != "" && intent.UserID != userID {
		s.log.Warn().
			Str("user_id", userID).
			Str("intent_user_id", intent.UserID).
			Str("payment_ref", ref).
			Msg("payment intent was issued for another user")
	}

	err = withUserLock(ctx, s.locker, userID, func() error {
		cart, err := s.carts.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrCartNotFound) {
				return domain.ErrEmptyCart
			}
			return err
		}
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		if status == domain.OrderPaid {
			existing, err := s.orders.FindPaidByPaymentReference(ctx, ref)
			if err == nil {
				s.log.Warn().Str("order_id", existing.ID).Str("payment_ref", ref).Msg("payment already finalized")
				return domain.ErrPaymentAlreadyUsed
			}
			if !errors.Is(err, domain.ErrOrderNotFound) {
				return err
			}
		}

		order := domain.NewOrderFromCart(cart, status, ref, s.now())
		if intent.Amount != 0 && intent.Amount != order.Total {
			s.log.Warn().
				Str("user_id", userID).
				Str("payment_ref", ref).
				Str("intent_amount", intent.Amount.String()).
				Str("order_total", order.Total.String()).
				Msg("payment amount differs from cart total")
		}

		created, err := s.orders.Create(ctx, order)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("failed to persist order")
			return err
		}
		res = &ports.FinalizeResult{Order: created, PaymentStatus: intent.Status}

		if status != domain.OrderPaid {
			return nil
		}
		if err := s.carts.Clear(ctx, userID, cart.Version); err != nil {
			metrics.CartClearFailuresTotal.Inc()
			s.log.Error().Err(err).
				Str("user_id", userID).
				Str("order_id", created.ID).
				Msg("order persisted but cart clear failed")
			return nil
		}
		res.CartCleared = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	metrics.OrdersFinalizedTotal.WithLabelValues(string(status)).Inc()
	s.log.Info().
		Str("user_id", userID).
		Str("order_id", res.Order.ID).
		Str("status", string(status)).
		Str("total", res.Order.Total.String()).
		Msg("order finalized")
	return res, nil
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func finalizeResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrGateway):
		return "gateway"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
