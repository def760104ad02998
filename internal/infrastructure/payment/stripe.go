// Package payment adapts the Stripe API to ports.PaymentGateway.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

const userIDMetadataKey = "user_id"

// Config holds the Stripe connection settings.
type Config struct {
	SecretKey string
	// APIURL overrides the Stripe endpoint; empty means the public API.
	APIURL   string
	Currency string
	Timeout  time.Duration
}

// StripeGateway creates and reads payment intents. It never retries; the
// caller decides what to do with a failure.
type StripeGateway struct {
	api      *client.API
	currency string
	timeout  time.Duration
}

func NewStripeGateway(cfg Config, log zerolog.Logger) *StripeGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripeLogger{log: log},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	return &StripeGateway{api: api, currency: currency, timeout: timeout}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount domain.Money, userID, idempotencyKey string) (*domain.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount)),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if userID != "" {
		params.AddMetadata(userIDMetadataKey, userID)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, gatewayError("create payment intent", err)
	}
	return toDomain(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, gatewayError("get payment intent", err)
	}
	return toDomain(pi), nil
}

func toDomain(pi *stripe.PaymentIntent) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       domain.Money(pi.Amount),
		Status:       domain.PaymentStatus(pi.Status),
		UserID:       pi.Metadata[userIDMetadataKey],
	}
}

// gatewayError keeps Stripe's message but never its request details.
func gatewayError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %s: %s (%s)", domain.ErrGateway, op, se.Msg, se.Code)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrGateway, op, err)
}

// stripeLogger routes the SDK's logging into zerolog.
type stripeLogger struct {
	log zerolog.Logger
}

func (l *stripeLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
func (l *stripeLogger) Infof(format string, v ...interface{})  { l.log.Debug().Msgf(format, v...) }
func (l *stripeLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l *stripeLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
