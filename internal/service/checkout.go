package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/metrics"
	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

// CheckoutRequest is the body of POST /orders. ShippingCost and TaxAmount
// are taken as supplied by the app.
type CheckoutRequest struct {
	ShippingAddress string          `json:"shipping_address" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	Notes           *string         `json:"notes"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	VoucherCode     string          `json:"voucher_code"`
	CartItemIDs     []uint64        `json:"cart_item_ids"`
}

// CheckoutResult is returned to the caller after commit.
type CheckoutResult struct {
	Order          *model.Order `json:"order"`
	VoucherApplied bool         `json:"voucher_applied"`
}

// Totals is the money breakdown of one checkout.
type Totals struct {
	ItemsSubtotal decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Discount      decimal.Decimal
	GrandTotal    decimal.Decimal
}

// ComputeTotals sums the lines and applies the voucher value. The grand
// total is floored at zero.
func ComputeTotals(lines []model.CartLine, tax, shipping, voucherValue decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	discount := DiscountAmount(voucherValue, subtotal)
	grand := subtotal.Add(tax).Add(shipping).Sub(discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}
	return Totals{
		ItemsSubtotal: subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Discount:      discount,
		GrandTotal:    grand,
	}
}

// NewOrderNumber formats ORD-<epoch millis>-<8 hex>. The random suffix
// keeps two checkouts in the same millisecond apart.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

// CheckoutService turns cart lines into an order.
type CheckoutService struct {
	carts    *repository.CartRepo
	orders   *repository.OrderRepo
	vouchers *VoucherService
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewCheckoutService(carts *repository.CartRepo, orders *repository.OrderRepo, vouchers *VoucherService, logger *zap.Logger, timeout time.Duration) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		vouchers: vouchers,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Checkout runs the whole migration in one transaction: consume the
// voucher, load the selected cart lines, insert the order and its items,
// then delete the migrated lines. Any failure rolls everything back,
// including the voucher redemption.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint64, req CheckoutRequest) (*CheckoutResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.checkout(ctx, userID, req)
	switch {
	case err == nil:
		metrics.RecordCheckout("success")
	case errors.Is(err, ErrCartEmpty):
		metrics.RecordCheckout("empty")
	default:
		metrics.RecordCheckout("error")
		s.logger.Error("checkout failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return res, err
}

func (s *CheckoutService) checkout(ctx context.Context, userID uint64, req CheckoutRequest) (*CheckoutResult, error) {
	tx, err := s.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	voucherValue, applied, err := s.vouchers.ResolveTx(ctx, tx, req.VoucherCode)
	if err != nil {
		return nil, err
	}

	lines, err := s.carts.Lines(ctx, tx, userID, req.CartItemIDs)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	totals := ComputeTotals(lines, req.TaxAmount, req.ShippingCost, voucherValue)
	order := &model.Order{
		UserID:          userID,
		OrderNumber:     NewOrderNumber(s.now()),
		TotalAmount:     totals.GrandTotal,
		ShippingCost:    totals.Shipping,
		TaxAmount:       totals.Tax,
		DiscountAmount:  totals.Discount,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          model.OrderPending,
		PaymentStatus:   model.PaymentUnpaid,
		Notes:           req.Notes,
	}
	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	items := make([]model.OrderItem, 0, len(lines))
	moved := make([]uint64, 0, len(lines))
	for _, l := range lines {
		moved = append(moved, l.ID)
		items = append(items, model.OrderItem{
			OrderID:         order.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			Subtotal:        l.Subtotal,
			TransactionType: l.TransactionType,
		})
	}
	if err := s.orders.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("insert order items: %w", err)
	}

	// only rows that became order items leave the cart
	if err := s.carts.DeleteTx(ctx, tx, userID, moved); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	order.Items = items

	s.logger.Info("order created",
		zap.Uint64("user_id", userID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()),
		zap.Bool("voucher_applied", applied))
	return &CheckoutResult{Order: order, VoucherApplied: applied}, nil
}
