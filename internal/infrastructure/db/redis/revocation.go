package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList stores revoked token ids with a TTL equal to the token's
// remaining lifetime.
// Key format: revoked:<jti>
type RevocationList struct {
	client *redis.Client
}

func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (r *RevocationList) key(tokenID string) string {
	return "revoked:" + tokenID
}
