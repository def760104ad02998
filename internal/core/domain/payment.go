package domain

// PaymentStatus mirrors the gateway's payment intent status values.
type PaymentStatus string

const (
	PaymentRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentRequiresConfirmation  PaymentStatus = "requires_confirmation"
	PaymentRequiresAction        PaymentStatus = "requires_action"
	PaymentProcessing            PaymentStatus = "processing"
	PaymentRequiresCapture       PaymentStatus = "requires_capture"
	PaymentCanceled              PaymentStatus = "canceled"
	PaymentSucceeded             PaymentStatus = "succeeded"
)

// PaymentIntent is the gateway-side object, fetched by reference and never
// cached beyond a single request.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       Money
	Status       PaymentStatus
	// UserID is the user the intent was issued for; empty for intents
	// created outside this service.
	UserID string
}

// OrderStatus maps the gateway status to the order status it produces.
func (s PaymentStatus) OrderStatus() OrderStatus {
	if s == PaymentSucceeded {
		return OrderPaid
	}
	return OrderPending
}
