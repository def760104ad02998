package ports

import "context"

// UserLocker provides per-user mutual exclusion for cart and order writes.
type UserLocker interface {
	// Lock blocks until the lock for userID is held or ctx ends. The returned
	// func releases it and is safe to call once.
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}
