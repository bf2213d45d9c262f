package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/strikeit/strikeit-api/internal/model"
)

// OrderRepo provides persistence for orders and their items. Items are
// written once, together with the order, and never re-migrated.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the handle for callers that run a transaction.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts an order within the caller's transaction and populates its ID.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders
               (id_user, order_number, total_amount, shipping_cost, tax_amount, discount_amount,
                shipping_address, payment_method, status, payment_status, notes)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.UserID, o.OrderNumber, o.TotalAmount, o.ShippingCost, o.TaxAmount, o.DiscountAmount,
		o.ShippingAddress, o.PaymentMethod, o.Status, o.PaymentStatus, o.Notes)
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
	o.ID = uint64(id)
	return nil
}

// CreateItemsBulkTx inserts all order items in a single statement. Passing
// an empty slice has no effect.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (id_order, id_product, quantity, unit_price, subtotal, transaction_type) VALUES `)
	args := make([]any, 0, len(items)*6)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal, it.TransactionType)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

const orderColumns = `id, id_user, order_number, total_amount, shipping_cost, tax_amount, discount_amount,
                      shipping_address, payment_method, status, payment_status, notes, created_at`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	var notes sql.NullString
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.ShippingCost, &o.TaxAmount, &o.DiscountAmount,
		&o.ShippingAddress, &o.PaymentMethod, &o.Status, &o.PaymentStatus, &notes, &o.CreatedAt)
	if err != nil {
		return o, err
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first, without items.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id_user = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByIDForUser returns an order with its items. Orders of other users are
// reported as ErrNotFound.
func (r *OrderRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? AND id_user = ?`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT oi.id, oi.id_order, oi.id_product, COALESCE(p.name, ''), oi.quantity, oi.unit_price, oi.subtotal, oi.transaction_type
         FROM order_items oi
         LEFT JOIN products p ON p.id = oi.id_product
         WHERE oi.id_order = ?
         ORDER BY oi.id`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	o.Items = make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal, &it.TransactionType); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}
