package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/commerce-api/internal/core/ports"
)

const defaultIntentTTL = 24 * time.Hour

// IntentCache remembers issued payment intents per pay-session token.
// Key format: payintent:<token>
type IntentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIntentCache creates an IntentCache wrapping the given Redis client.
func NewIntentCache(client *redis.Client, ttl time.Duration) *IntentCache {
	if ttl <= 0 {
		ttl = defaultIntentTTL
	}
	return &IntentCache{client: client, ttl: ttl}
}

// Get returns the cached intent, or (nil, nil) when none was issued.
func (c *IntentCache) Get(ctx context.Context, token string) (*ports.IssuedIntent, error) {
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("intent cache get: %w", err)
	}

	var issued ports.IssuedIntent
	if err := json.Unmarshal(raw, &issued); err != nil {
		return nil, fmt.Errorf("intent cache decode: %w", err)
	}
	return &issued, nil
}

// Put records the intent. An existing entry for the token is kept.
func (c *IntentCache) Put(ctx context.Context, token string, intent ports.IssuedIntent) error {
	raw, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("intent cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, c.key(token), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("intent cache put: %w", err)
	}
	return nil
}

func (c *IntentCache) key(token string) string {
	return "payintent:" + token
}
