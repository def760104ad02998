package domain

import "time"

// MaxLineQuantity bounds a single cart line.
const MaxLineQuantity = 9999

// CartLine is one product entry in a cart. UnitPrice is the price snapshot
// captured when the line was created or last re-priced.
type CartLine struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice Money     `json:"unitPrice"`
	AddedAt   time.Time `json:"addedAt"`
}

// Total is the line amount at the snapshot price.
func (l CartLine) Total() Money {
	return l.UnitPrice.Times(l.Quantity)
}

// Cart is the per-user mutable aggregate. Product ids are unique across
// Lines. Version increases by one on every persisted write and is used for
// compare-and-set updates.
type Cart struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"userId"`
	Lines     []CartLine `json:"items"`
	Version   int64      `json:"-"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewCart returns an empty, not yet persisted cart.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Lines: []CartLine{}}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Line returns the line for productID, if any.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// AddLine increments an existing line by qty, keeping its price snapshot, or
// inserts a new line priced at the product's current price. The resulting
// quantity may not exceed MaxLineQuantity.
func (c *Cart) AddLine(p Product, qty int, now time.Time) error {
	if qty < 1 || qty > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(p.ID); i >= 0 {
		if c.Lines[i].Quantity > MaxLineQuantity-qty {
			return ErrInvalidQuantity
		}
		c.Lines[i].Quantity += qty
		return nil
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Quantity:  qty,
		UnitPrice: p.Price,
		AddedAt:   now,
	})
	return nil
}

// SetLineQuantity overwrites the quantity of an existing line. When current
// is non-nil the snapshot is refreshed to its price; otherwise the previous
// snapshot is kept.
func (c *Cart) SetLineQuantity(productID string, qty int, current *Product) error {
	if qty < 1 || qty > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].Quantity = qty
	if current != nil {
		c.Lines[i].UnitPrice = current.Price
	}
	return nil
}

// RemoveLine deletes the line for productID. Missing lines are ignored.
func (c *Cart) RemoveLine(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Total sums every line at its snapshot price.
func (c *Cart) Total() Money {
	var total Money
	for _, l := range c.Lines {
		total += l.Total()
	}
	return total
}
