package ports

import (
	"context"

	"github.com/storefront/commerce-api/internal/core/domain"
)

// IssueIntentInput carries a checkout attempt's payment request.
type IssueIntentInput struct {
	UserID string
	Amount domain.Money
	// PayToken is the client-generated id of this checkout attempt.
	PayToken  string
	ItemCount int
}

type PaymentService interface {
	// IssueIntent returns the client-confirmable secret of a new (or, for a
	// repeated PayToken, previously issued) payment intent.
	IssueIntent(ctx context.Context, in IssueIntentInput) (string, error)
}
