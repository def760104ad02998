package domain

import "errors"

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can classify it with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrGateway         = errors.New("gateway error")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrUnknownUser     = newKindError(ErrUnauthenticated, "user not registered")
	ErrNoActiveSession = newKindError(ErrUnauthenticated, "no active session")

	ErrUserNotFound    = newKindError(ErrNotFound, "user not found")
	ErrProductNotFound = newKindError(ErrNotFound, "product not found")
	ErrLineNotFound    = newKindError(ErrNotFound, "item not found in cart")
	ErrCartNotFound    = newKindError(ErrNotFound, "cart not found")
	ErrOrderNotFound   = newKindError(ErrNotFound, "order not found")

	ErrEmptyCart          = newKindError(ErrInvalidInput, "cart is empty")
	ErrInvalidRole        = newKindError(ErrInvalidInput, "invalid role")
	ErrInvalidQuantity    = newKindError(ErrInvalidInput, "quantity must be between 1 and 9999")
	ErrInvalidAmount      = newKindError(ErrInvalidInput, "amount must be greater than zero")
	ErrInvalidCredentials = newKindError(ErrInvalidInput, "invalid credentials")

	ErrUserExists          = newKindError(ErrConflict, "user already exists")
	ErrPaymentAlreadyUsed  = newKindError(ErrConflict, "payment already used for an order")
	ErrCartVersionMismatch = newKindError(ErrConflict, "cart was modified concurrently")
	ErrLockNotAcquired     = newKindError(ErrConflict, "another operation is in progress for this user")
	ErrIdempotencyMismatch = newKindError(ErrConflict, "payment session token reused with different parameters")
)

// kindError is a specific error that unwraps to its kind.
type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
