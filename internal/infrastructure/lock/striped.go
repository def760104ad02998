// Package lock provides the in-process per-user lock used when the API runs
// as a single instance.
package lock

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const defaultStripes = 256

// Striped maps each user id onto one of a fixed set of one-slot semaphores.
// Different users may share a stripe; the same user always maps to the same one.
type Striped struct {
	stripes []chan struct{}
	wait    time.Duration
}

// NewStriped creates a locker with n stripes. Lock gives up after wait; a
// zero wait blocks until ctx ends.
func NewStriped(n int, wait time.Duration) *Striped {
	if n <= 0 {
		n = defaultStripes
	}
	s := &Striped{stripes: make([]chan struct{}, n), wait: wait}
	for i := range s.stripes {
		s.stripes[i] = make(chan struct{}, 1)
	}
	return s
}

func (s *Striped) Lock(ctx context.Context, userID string) (func(), error) {
	slot := s.stripes[s.stripeIndex(userID)]

	var timeout <-chan time.Time
	if s.wait > 0 {
		t := time.NewTimer(s.wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, domain.ErrLockNotAcquired
	}

	var once sync.Once
	return func() { once.Do(func() { <-slot }) }, nil
}

// stripeIndex maps a user id deterministically to a stripe.
func (s *Striped) stripeIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(s.stripes)))
}
