package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending = "pending"
)

// Order is created exactly once per checkout. Its item set never changes
// afterwards.
type Order struct {
	ID              uint64          `json:"id"`
	UserID          uint64          `json:"id_user"`
	OrderNumber     string          `json:"order_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem captures the unit price at order time; it is not a live
// reference to the product price.
type OrderItem struct {
	ID              uint64          `json:"id"`
	OrderID         uint64          `json:"id_order"`
	ProductID       uint64          `json:"id_product"`
	ProductName     string          `json:"product_name,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TransactionType string          `json:"transaction_type"`
}
