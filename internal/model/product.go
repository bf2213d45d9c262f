package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types for cart lines and order items.
const (
	TransactionRent = "sewa"
	TransactionBuy  = "beli"
)

// Product is tackle that can be rented (sewa) or bought (beli).
type Product struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	PriceRent   decimal.Decimal `json:"price_rent"`
	PriceSale   decimal.Decimal `json:"price_sale"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PriceFor resolves the unit price for a transaction type. Anything other
// than sewa is priced as a sale.
func (p Product) PriceFor(transactionType string) decimal.Decimal {
	return PriceFor(transactionType, p.PriceRent, p.PriceSale)
}

// PriceFor picks rent when transactionType is sewa and sale otherwise.
func PriceFor(transactionType string, rent, sale decimal.Decimal) decimal.Decimal {
	if transactionType == TransactionRent {
		return rent
	}
	return sale
}
