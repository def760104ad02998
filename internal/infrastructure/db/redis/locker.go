package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const lockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// UserLocker is a per-user lock shared by every API instance.
// Key format: lock:user:<user_id>
type UserLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewUserLocker builds a locker whose locks expire after ttl and whose Lock
// gives up after wait. A zero wait blocks until ctx ends.
func NewUserLocker(client *redis.Client, ttl, wait time.Duration, log zerolog.Logger) *UserLocker {
	return &UserLocker{client: client, ttl: ttl, wait: wait, log: log}
}

func (l *UserLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := "lock:user:" + userID
	token := uuid.NewString()

	waitCtx, cancel := ctx, context.CancelFunc(func() {})
	if l.wait > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
	}
	defer cancel()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, domain.ErrLockNotAcquired
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *UserLocker) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()
			err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
			}
		})
	}
}
