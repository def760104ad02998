package domain

// Product is the catalog view the core consumes. The catalog itself is owned
// by another service; the core only reads it.
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         Money  `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
	ImageURL      string `json:"imageUrl,omitempty"`
}
