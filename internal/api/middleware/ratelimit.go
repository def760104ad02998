package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds a per-user token bucket configuration.
type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// PerMinute builds a config allowing n requests per minute per user.
func PerMinute(n int) RateLimiterConfig {
	if n <= 0 {
		n = 1
	}
	return RateLimiterConfig{
		Rate:            rate.Limit(float64(n) / 60.0),
		Burst:           n,
		CleanupInterval: 5 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles requests per authenticated user.
type RateLimiter struct {
	config RateLimiterConfig
	log    zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stopCh chan struct{}
	once   sync.Once
}

// NewRateLimiter starts a background sweep of idle entries; call Stop on shutdown.
func NewRateLimiter(config RateLimiterConfig, log zerolog.Logger) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:   config,
		log:      log,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// Middleware must run after Authenticate; it falls back to the client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if p, ok := PrincipalFrom(c); ok {
				key = p.User.ID
			}

			if !rl.limiterFor(key).Allow() {
				rl.log.Warn().Str("key", key).Str("path", c.Path()).Msg("rate limit exceeded")
				c.Response().Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if ul, ok := rl.limiters[key]; ok {
		ul.lastAccess = time.Now()
		return ul.limiter
	}
	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.limiters[key] = &userLimiter{limiter: l, lastAccess: time.Now()}
	return l
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops entries idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

// retryAfter estimates the seconds until one token is refilled.
func (rl *RateLimiter) retryAfter() int {
	if rl.config.Rate <= 0 {
		return 60
	}
	sec := int(math.Ceil(1.0 / float64(rl.config.Rate)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
