package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

var (
	hundred       = decimal.NewFromInt(100)
	leadingNumber = regexp.MustCompile(`^\d+(?:\.\d+)?`)
)

// ParseDiscountValue turns a stored discount_value into a number. A value
// containing "%" is read from its leading number as a fraction, so "15%"
// and "15%off" both become 0.15; anything else is a fixed amount.
func ParseDiscountValue(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Zero, ErrInvalidDiscountValue
	}
	if strings.Contains(v, "%") {
		num := leadingNumber.FindString(v)
		if num == "" {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDiscountValue, raw)
		}
		pct, err := decimal.NewFromString(num)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDiscountValue, raw)
		}
		return pct.Div(hundred), nil
	}
	amt, err := decimal.NewFromString(v)
	if err != nil || amt.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDiscountValue, raw)
	}
	return amt, nil
}

// DiscountAmount converts a resolved voucher value into money off the
// subtotal. A value strictly between 0 and 1 is a fraction of the subtotal;
// any other value is a fixed amount. A fixed value of exactly 1 therefore
// means one currency unit, not 100%.
func DiscountAmount(value, subtotal decimal.Decimal) decimal.Decimal {
	if value.IsPositive() && value.LessThan(decimal.NewFromInt(1)) {
		return subtotal.Mul(value)
	}
	return value
}

// VoucherService resolves and issues voucher codes.
type VoucherService struct {
	discounts     *repository.DiscountRepo
	notifications *repository.NotificationRepo
	logger        *zap.Logger
}

func NewVoucherService(discounts *repository.DiscountRepo, notifications *repository.NotificationRepo, logger *zap.Logger) *VoucherService {
	return &VoucherService{discounts: discounts, notifications: notifications, logger: logger}
}

// ResolveTx consumes one redemption of code inside tx and returns its
// value. A blank code, an unknown code or a code at its usage cap resolve
// to zero with applied=false; none of these is an error. The usage
// increment is part of tx, so a later rollback returns the redemption.
func (s *VoucherService) ResolveTx(ctx context.Context, tx *sql.Tx, code string) (value decimal.Decimal, applied bool, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, false, nil
	}
	d, err := s.discounts.LockByCodeTx(ctx, tx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("lock voucher: %w", err)
	}
	if d.UsedCount >= d.MaxUsage {
		return decimal.Zero, false, nil
	}
	if err := s.discounts.IncrementUsageTx(ctx, tx, d.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("consume voucher: %w", err)
	}
	v, err := ParseDiscountValue(d.DiscountValue)
	if err != nil {
		return decimal.Zero, false, err
	}
	return v, true, nil
}

// Preview reports a voucher and how many redemptions remain without
// consuming one.
func (s *VoucherService) Preview(ctx context.Context, code string) (*model.Discount, error) {
	d, err := s.discounts.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if _, err := ParseDiscountValue(d.DiscountValue); err != nil {
		return nil, err
	}
	return d, nil
}

// Create issues a new voucher and queues a discount notification for every
// user in the same transaction.
func (s *VoucherService) Create(ctx context.Context, d *model.Discount) (int64, error) {
	if _, err := ParseDiscountValue(d.DiscountValue); err != nil {
		return 0, err
	}
	tx, err := s.discounts.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.discounts.CreateTx(ctx, tx, d); err != nil {
		return 0, err
	}
	body := fmt.Sprintf("Gunakan kode %s untuk potongan %s.", d.Code, d.DiscountValue)
	ref := d.ID
	n, err := s.notifications.CreateForAllUsersTx(ctx, tx, d.Title, body, model.NotifyDiscount, &ref)
	if err != nil {
		return 0, fmt.Errorf("fan out discount notification: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	s.logger.Info("voucher created", zap.String("code", d.Code), zap.Int64("notified", n))
	return n, nil
}
