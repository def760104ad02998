// @title                       Storefront Commerce API
// @version                     1.0
// @description                 Cart, payment intent and order finalization for the storefront.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/storefront/commerce-api/internal/api"
	"github.com/storefront/commerce-api/internal/api/handler"
	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/ports"
	"github.com/storefront/commerce-api/internal/core/service"
	"github.com/storefront/commerce-api/internal/infrastructure/config"
	mongodb "github.com/storefront/commerce-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/commerce-api/internal/infrastructure/db/redis"
	"github.com/storefront/commerce-api/internal/infrastructure/identity"
	"github.com/storefront/commerce-api/internal/infrastructure/lock"
	"github.com/storefront/commerce-api/internal/infrastructure/payment"
	"github.com/storefront/commerce-api/pkg/logger"
)

func main() {
	ctx := context.Background()
	cfg := config.Load(ctx)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "commerce-api",
		Env:     cfg.Env,
	})

	if cfg.Stripe.SecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY is empty, payment calls will be rejected by the gateway")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)
	cartRepo := mongodb.NewCartRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)
	productRepo := mongodb.NewProductRepository(db)
	credentialRepo := mongodb.NewCredentialRepository(db)

	if err := mongodb.EnsureIndexes(ctx, userRepo, sessionRepo, cartRepo, orderRepo, productRepo, credentialRepo); err != nil {
		log.Fatal().Err(err).Msg("create indexes")
	}

	// --- Adapters ---
	idp := identity.NewProvider(credentialRepo, redisdb.NewRevocationList(rdb), cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey: cfg.Stripe.SecretKey,
		APIURL:    cfg.Stripe.APIURL,
		Currency:  cfg.Stripe.Currency,
		Timeout:   cfg.Stripe.Timeout,
	}, logger.Component("stripe"))

	var locker ports.UserLocker
	switch cfg.Lock.Backend {
	case "local":
		locker = lock.NewStriped(0, cfg.Lock.Wait)
	default:
		locker = redisdb.NewUserLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait, logger.Component("lock"))
	}

	var intentCache ports.IntentCache
	if cfg.Payment.Idempotency {
		intentCache = redisdb.NewIntentCache(rdb, cfg.Payment.IdempotencyTTL)
	}

	// --- Services ---
	sessions := service.NewSessionService(sessionRepo, log, service.WithSingleActiveSession(cfg.Auth.SingleActiveSession))
	authService := service.NewAuthService(idp, userRepo, sessions, log)
	authorizer := service.NewAuthorizer(idp, userRepo, sessions, log)
	cartService := service.NewCartService(cartRepo, productRepo, locker, log)
	paymentService := service.NewPaymentService(gateway, intentCache, log)
	orderService := service.NewOrderService(cartRepo, orderRepo, gateway, locker, log)

	intentLimiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.Payment.IntentRatePerMinute), logger.Component("ratelimit"))
	defer intentLimiter.Stop()

	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Authorizer:    authorizer,
		Sessions:      sessions,
		Cart:          cartService,
		Payments:      paymentService,
		Orders:        orderService,
		IntentLimiter: intentLimiter,
		CORSOrigins:   splitOrigins(cfg.CORSOrigin),
		HealthChecks: []handler.DependencyCheck{
			{Name: "mongodb", Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	}, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

