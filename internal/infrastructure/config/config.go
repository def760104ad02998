package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	LogPretty       bool          `env:"LOG_PRETTY,       default=false"`
	CORSOrigin      string        `env:"CORS_ORIGIN,      default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Stripe  StripeConfig
	Payment PaymentConfig
	Lock    LockConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`
	// SingleActiveSession ends a user's previous sessions on every login.
	SingleActiveSession bool `env:"SESSION_SINGLE_ACTIVE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=20"`
}

type StripeConfig struct {
	SecretKey string        `env:"STRIPE_SECRET_KEY"`
	APIURL    string        `env:"STRIPE_API_URL"`
	Currency  string        `env:"STRIPE_CURRENCY, default=usd"`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT, default=10s"`
}

type PaymentConfig struct {
	Idempotency    bool          `env:"PAYMENT_IDEMPOTENCY, default=true"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL,     default=24h"`
	// IntentRatePerMinute limits intent requests per user.
	IntentRatePerMinute int `env:"INTENT_RATE_PER_MIN, default=20"`
}

type LockConfig struct {
	// Backend is "redis" (shared across instances) or "local".
	Backend string        `env:"LOCK_BACKEND, default=redis"`
	TTL     time.Duration `env:"LOCK_TTL,     default=15s"`
	Wait    time.Duration `env:"LOCK_WAIT,    default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) *Config {
	cfg, err := Process(ctx, envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Process resolves the configuration from an arbitrary lookuper.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
