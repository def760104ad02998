package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if cfg.Port != "8080" || cfg.Mongo.Database != "storefront" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.JWTTTL != 24*time.Hour || cfg.Auth.SingleActiveSession {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if !cfg.Payment.Idempotency || cfg.Payment.IntentRatePerMinute != 20 {
		t.Fatalf("unexpected payment defaults: %+v", cfg.Payment)
	}
	if cfg.Lock.Backend != "redis" || cfg.Lock.Wait != 5*time.Second {
		t.Fatalf("unexpected lock defaults: %+v", cfg.Lock)
	}
	if cfg.Stripe.Currency != "usd" || cfg.Stripe.Timeout != 10*time.Second {
		t.Fatalf("unexpected stripe defaults: %+v", cfg.Stripe)
	}
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":            "s3cret",
		"SESSION_SINGLE_ACTIVE": "true",
		"PAYMENT_IDEMPOTENCY":   "false",
		"LOCK_BACKEND":          "local",
		"GATEWAY_TIMEOUT":       "3s",
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !cfg.Auth.SingleActiveSession || cfg.Payment.Idempotency {
		t.Fatalf("boolean overrides not applied: %+v %+v", cfg.Auth, cfg.Payment)
	}
	if cfg.Lock.Backend != "local" || cfg.Stripe.Timeout != 3*time.Second {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Lock, cfg.Stripe)
	}
}

func TestProcess_RequiresJWTSecret(t *testing.T) {
	if _, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected an error without JWT_SECRET")
	}
}
