package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line in a user's shopping cart. A user holds at most one
// line per (product, transaction type); adding again merges quantities.
type CartItem struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"id_user"`
	ProductID       uint64    `json:"id_product"`
	Quantity        int       `json:"quantity"`
	TransactionType string    `json:"transaction_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// CartLine is a cart item joined with the product's current prices. It is
// what GET /cart returns and what checkout migrates into order items.
type CartLine struct {
	CartItem
	ProductName string          `json:"product_name"`
	ImageURL    *string         `json:"image_url,omitempty"`
	PriceRent   decimal.Decimal `json:"-"`
	PriceSale   decimal.Decimal `json:"-"`
	UnitPrice   decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Resolve fills UnitPrice and Subtotal from the transaction type.
func (l *CartLine) Resolve() {
	l.UnitPrice = PriceFor(l.TransactionType, l.PriceRent, l.PriceSale)
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
