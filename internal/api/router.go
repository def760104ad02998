package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/storefront/commerce-api/docs"
	"github.com/storefront/commerce-api/internal/api/handler"
	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth       ports.AuthService
	Authorizer ports.Authorizer
	Sessions   ports.SessionManager
	Cart       ports.CartService
	Payments   ports.PaymentService
	Orders     ports.OrderService

	// IntentLimiter throttles payment intent creation; nil disables it.
	IntentLimiter *middleware.RateLimiter
	HealthChecks  []handler.DependencyCheck
	CORSOrigins   []string

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: deps.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	cartHandler := handler.NewCartHandler(deps.Cart)
	paymentHandler := handler.NewPaymentHandler(deps.Payments)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks...)

	authn := middleware.Authenticate(deps.Authorizer)
	apiGroup := e.Group("/api")

	// --- Auth routes ---
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/login", authHandler.Login)
	apiGroup.POST("/auth/logout", authHandler.Logout, authn)

	// --- Cart routes ---
	cart := apiGroup.Group("/cart", authn)
	cart.GET("", cartHandler.Get)
	cart.POST("", cartHandler.Add)
	cart.PUT("/:productId", cartHandler.Update)
	cart.DELETE("/:productId", cartHandler.Remove)

	// --- Payment routes ---
	intentMiddleware := []echo.MiddlewareFunc{authn}
	if deps.IntentLimiter != nil {
		intentMiddleware = append(intentMiddleware, deps.IntentLimiter.Middleware())
	}
	apiGroup.POST("/payments/create-payment-intent", paymentHandler.CreateIntent, intentMiddleware...)

	// --- Order routes ---
	orders := apiGroup.Group("/orders", authn)
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)

	// --- Session routes ---
	apiGroup.GET("/sessions", sessionHandler.ListAll, authn, middleware.RequireRole(domain.RoleAdmin))
	apiGroup.GET("/sessions/user", sessionHandler.ListMine, authn)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
