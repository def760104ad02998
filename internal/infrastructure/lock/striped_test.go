package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storefront/commerce-api/internal/core/domain"
)

func TestStriped_SerializesSameUser(t *testing.T) {
	l := NewStriped(16, 0)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "u1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen)
	}
}

func TestStriped_WaitExpires(t *testing.T) {
	l := NewStriped(4, 20*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	if _, err := l.Lock(context.Background(), "u1"); !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired, got %v", err)
	}
}

func TestStriped_ContextCancel(t *testing.T) {
	l := NewStriped(4, 0)

	unlock, _ := l.Lock(context.Background(), "u1")
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "u1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestStriped_UnlockIsIdempotent(t *testing.T) {
	l := NewStriped(1, 20*time.Millisecond)

	unlock, _ := l.Lock(context.Background(), "u1")
	unlock()
	unlock()

	// A double unlock must not free a slot held by someone else.
	second, err := l.Lock(context.Background(), "u2")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer second()
	unlock()

	if _, err := l.Lock(context.Background(), "u3"); !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected the single stripe to stay held, got %v", err)
	}
}

func TestStriped_StripeIndexIsStable(t *testing.T) {
	l := NewStriped(0, 0)
	if len(l.stripes) != defaultStripes {
		t.Fatalf("expected %d default stripes, got %d", defaultStripes, len(l.stripes))
	}
	for _, id := range []string{"u1", "665f1c2e9b1e8a0012345678", ""} {
		if a, b := l.stripeIndex(id), l.stripeIndex(id); a != b || a < 0 || a >= defaultStripes {
			t.Fatalf("unstable or out of range index for %q: %d %d", id, a, b)
		}
	}
}
