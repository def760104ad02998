package domain

import "time"

// OrderStatus is the payment state recorded on an order at creation time.
type OrderStatus string

const (
	OrderPaid    OrderStatus = "paid"
	OrderPending OrderStatus = "pending"
)

// OrderItem is a product/quantity pair copied from the cart. UnitPrice keeps
// the snapshot the total was computed from.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
}

// Order is immutable once created.
type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"userId"`
	Items            []OrderItem `json:"products"`
	Total            Money       `json:"totalAmount"`
	Status           OrderStatus `json:"status"`
	PaymentReference string      `json:"paymentIntentId"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// NewOrderFromCart copies the cart lines into a new order. The total is
// always recomputed from the stored snapshots.
func NewOrderFromCart(c *Cart, status OrderStatus, paymentRef string, now time.Time) *Order {
	items := make([]OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return &Order{
		UserID:           c.UserID,
		Items:            items,
		Total:            c.Total(),
		Status:           status,
		PaymentReference: paymentRef,
		CreatedAt:        now,
	}
}
