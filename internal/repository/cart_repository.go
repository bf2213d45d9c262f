package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/strikeit/strikeit-api/internal/model"
)

// CartRepo manages shopping_cart rows. A user has at most one row per
// (product, transaction type), enforced by uq_cart_line; AddTx merges into it.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// DB exposes the handle for callers that run a transaction.
func (r *CartRepo) DB() *sql.DB { return r.db }

// AddTx adds quantity to the user's line for the product and transaction
// type, creating the line when none exists. It returns the line's ID and
// resulting quantity. The merge is a single upsert on uq_cart_line, so
// concurrent first adds end up on one row.
func (r *CartRepo) AddTx(ctx context.Context, tx *sql.Tx, userID, productID uint64, quantity int, transactionType string) (uint64, int, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO shopping_cart (id_user, id_product, quantity, transaction_type) VALUES (?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), quantity = quantity + VALUES(quantity)`,
		userID, productID, quantity, transactionType)
	if err != nil {
		return 0, 0, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	id := uint64(lastID)
	var total int
	if err := tx.QueryRowContext(ctx, `SELECT quantity FROM shopping_cart WHERE id = ?`, id).Scan(&total); err != nil {
		return 0, 0, err
	}
	return id, total, nil
}

// Lines returns the user's cart joined with product prices, resolved by
// transaction type. When ids is non-empty only those rows are returned.
func (r *CartRepo) Lines(ctx context.Context, q DBTX, userID uint64, ids []uint64) ([]model.CartLine, error) {
	query := `SELECT c.id, c.id_user, c.id_product, c.quantity, c.transaction_type, c.created_at,
                     p.name, p.image_url, p.price_rent, p.price_sale
              FROM shopping_cart c
              JOIN products p ON p.id = c.id_product
              WHERE c.id_user = ?`
	args := []any{userID}
	if len(ids) > 0 {
		query += ` AND c.id IN (` + placeholders(len(ids)) + `)`
		args = append(args, uint64Args(ids)...)
	}
	query += ` ORDER BY c.id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CartLine, 0)
	for rows.Next() {
		var l model.CartLine
		var img sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.TransactionType, &l.CreatedAt,
			&l.ProductName, &img, &l.PriceRent, &l.PriceSale); err != nil {
			return nil, err
		}
		if img.Valid {
			l.ImageURL = &img.String
		}
		l.Resolve()
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateQuantity sets the quantity of one of the user's lines.
func (r *CartRepo) UpdateQuantity(ctx context.Context, id, userID uint64, quantity int) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shopping_cart WHERE id = ? AND id_user = ?`, id, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE shopping_cart SET quantity = ? WHERE id = ? AND id_user = ?`, quantity, id, userID)
	return err
}

// Delete removes one of the user's lines.
func (r *CartRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_cart WHERE id = ? AND id_user = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTx removes the given lines of the user. Checkout passes exactly the
// rows it copied into an order, so a line whose product no longer resolves
// stays in the cart.
func (r *CartRepo) DeleteTx(ctx context.Context, tx *sql.Tx, userID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{userID}, uint64Args(ids)...)
	_, err := tx.ExecContext(ctx,
		`DELETE FROM shopping_cart WHERE id_user = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	return err
}
