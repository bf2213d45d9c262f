package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/strikeit/strikeit-api/internal/model"
)

// DiscountRepo manages voucher codes and their usage counters.
type DiscountRepo struct {
	db *sql.DB
}

func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

// DB exposes the handle for callers that run a transaction.
func (r *DiscountRepo) DB() *sql.DB { return r.db }

const discountColumns = `id, code, title, discount_value, used_count, max_usage, created_at`

func scanDiscount(row *sql.Row) (*model.Discount, error) {
	var d model.Discount
	if err := row.Scan(&d.ID, &d.Code, &d.Title, &d.DiscountValue, &d.UsedCount, &d.MaxUsage, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetByCode reads a discount without locking it.
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (*model.Discount, error) {
	return scanDiscount(r.db.QueryRowContext(ctx, `SELECT `+discountColumns+` FROM discounts WHERE code = ?`, code))
}

// LockByCodeTx reads the discount row with FOR UPDATE; the lock is held
// until the caller's transaction ends.
func (r *DiscountRepo) LockByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.Discount, error) {
	return scanDiscount(tx.QueryRowContext(ctx, `SELECT `+discountColumns+` FROM discounts WHERE code = ? FOR UPDATE`, code))
}

// IncrementUsageTx consumes one redemption. The used_count < max_usage guard
// keeps the cap intact even for a caller that skipped the lock.
func (r *DiscountRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `UPDATE discounts SET used_count = used_count + 1 WHERE id = ? AND used_count < max_usage`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrConflict
	}
	return nil
}

// CreateTx inserts a discount code. A code that already exists yields ErrDuplicate.
func (r *DiscountRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Discount) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO discounts (code, title, discount_value, used_count, max_usage) VALUES (?, ?, ?, 0, ?)`,
		d.Code, d.Title, d.DiscountValue, d.MaxUsage)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}
