package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/strikeit/strikeit-api/internal/model"
)

// ProductRepo reads the tackle catalogue.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, name, description, category, price_rent, price_sale, stock, image_url, created_at`

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	var desc, img sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &desc, &p.Category, &p.PriceRent, &p.PriceSale, &p.Stock, &img, &p.CreatedAt); err != nil {
		return p, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	if img.Valid {
		p.ImageURL = &img.String
	}
	return p, nil
}

// List returns products, optionally restricted to one category.
func (r *ProductRepo) List(ctx context.Context, category string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID returns a product or ErrNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
