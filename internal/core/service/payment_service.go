package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// PaymentService issues payment intents through the gateway. When cache is
// non-nil a repeated pay token replays the intent it first produced instead
// of creating a second one.
type PaymentService struct {
	gateway ports.PaymentGateway
	cache   ports.IntentCache
	log     zerolog.Logger
}

// NewPaymentService builds the issuer. Pass a nil cache to disable
// pay-token deduplication.
func NewPaymentService(gateway ports.PaymentGateway, cache ports.IntentCache, log zerolog.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, cache: cache, log: log}
}

func (s *PaymentService) IssueIntent(ctx context.Context, in ports.IssueIntentInput) (string, error) {
	if in.Amount <= 0 {
		return "", domain.ErrInvalidAmount
	}

	dedup := s.cache != nil && in.PayToken != ""
	if dedup {
		prev, err := s.cache.Get(ctx, in.PayToken)
		switch {
		case err != nil:
			// The gateway still deduplicates on the idempotency key.
			s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("intent cache lookup failed")
		case prev != nil:
			if prev.UserID != in.UserID || prev.Amount != in.Amount {
				metrics.PaymentIntentsTotal.WithLabelValues("conflict").Inc()
				s.log.Warn().
					Str("user_id", in.UserID).
					Str("intent_id", prev.IntentID).
					Msg("pay token reused with different request")
				return "", domain.ErrIdempotencyMismatch
			}
			metrics.PaymentIntentsTotal.WithLabelValues("replayed").Inc()
			s.log.Info().Str("user_id", in.UserID).Str("intent_id", prev.IntentID).Msg("payment intent replayed")
			return prev.ClientSecret, nil
		}
	}

	key := ""
	if dedup {
		key = in.PayToken
	}
	intent, err := s.gateway.CreateIntent(ctx, in.Amount, in.UserID, key)
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("gateway_error").Inc()
		s.log.Error().Err(err).Str("user_id", in.UserID).Str("amount", in.Amount.String()).Msg("create payment intent failed")
		if !errors.Is(err, domain.ErrGateway) {
			err = fmt.Errorf("%w: %w", domain.ErrGateway, err)
		}
		return "", fmt.Errorf("issue intent: %w", err)
	}

	if dedup {
		issued := ports.IssuedIntent{
			UserID:       in.UserID,
			Amount:       in.Amount,
			IntentID:     intent.ID,
			ClientSecret: intent.ClientSecret,
		}
		if err := s.cache.Put(ctx, in.PayToken, issued); err != nil {
			s.log.Warn().Err(err).Str("intent_id", intent.ID).Msg("failed to cache issued intent")
		}
	}

	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	s.log.Info().
		Str("user_id", in.UserID).
		Str("intent_id", intent.ID).
		Str("amount", in.Amount.String()).
		Int("items", in.ItemCount).
		Msg("payment intent created")
	return intent.ClientSecret, nil
}
