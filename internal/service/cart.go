package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

// AddToCartRequest is the body of POST /cart.
type AddToCartRequest struct {
	ProductID       uint64 `json:"id_product" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,gte=1"`
	TransactionType string `json:"transaction_type" validate:"required,oneof=sewa beli"`
}

type CartService struct {
	carts    *repository.CartRepo
	products *repository.ProductRepo
	logger   *zap.Logger
}

func NewCartService(carts *repository.CartRepo, products *repository.ProductRepo, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

// Add puts quantity of a product into the user's cart. A line for the same
// product and transaction type is increased instead of duplicated.
func (s *CartService) Add(ctx context.Context, userID uint64, req AddToCartRequest) (*model.CartItem, error) {
	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}
	tx, err := s.carts.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	id, qty, err := s.carts.AddTx(ctx, tx, userID, req.ProductID, req.Quantity, req.TransactionType)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	s.logger.Debug("cart updated", zap.Uint64("user_id", userID), zap.Uint64("cart_id", id), zap.Int("quantity", qty))
	return &model.CartItem{
		ID:              id,
		UserID:          userID,
		ProductID:       req.ProductID,
		Quantity:        qty,
		TransactionType: req.TransactionType,
	}, nil
}

// Lines returns the user's cart with resolved prices and the cart total.
func (s *CartService) Lines(ctx context.Context, userID uint64) ([]model.CartLine, decimal.Decimal, error) {
	lines, err := s.carts.Lines(ctx, s.carts.DB(), userID, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return lines, ComputeTotals(lines, decimal.Zero, decimal.Zero, decimal.Zero).ItemsSubtotal, nil
}
