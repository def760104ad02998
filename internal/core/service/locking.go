package service

import (
	"context"
	"fmt"

	"github.com/storefront/commerce-api/internal/core/ports"
)

// withUserLock runs fn while holding the per-user lock.
func withUserLock(ctx context.Context, locker ports.UserLocker, userID string, fn func() error) error {
	unlock, err := locker.Lock(ctx, userID)
	if err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}
	defer unlock()
	return fn()
}
