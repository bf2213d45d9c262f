package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/strikeit/strikeit-api/internal/model"
)

// LocationRepo reads locations together with their spots and images.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo returns a new LocationRepo bound to the given database.
func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

// DB exposes the handle so services can open transactions spanning several repositories.
func (r *LocationRepo) DB() *sql.DB { return r.db }

const locationColumns = `id, name, address, city, description, price_per_hour, image_url, created_at`

func scanLocation(row interface{ Scan(...any) error }) (model.Location, error) {
	var l model.Location
	var desc, img sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &l.Address, &l.City, &desc, &l.PricePerHour, &img, &l.CreatedAt); err != nil {
		return l, err
	}
	if desc.Valid {
		l.Description = &desc.String
	}
	if img.Valid {
		l.ImageURL = &img.String
	}
	return l, nil
}

// ListAll returns every location ordered by name.
func (r *LocationRepo) ListAll(ctx context.Context) ([]model.Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetByID returns a single location or ErrNotFound.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	return getLocation(ctx, r.db, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
}

// LockTx loads the location and takes a row lock on it for the rest of the
// transaction. Booking creation for the same location is serialised on
// this lock.
func (r *LocationRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Location, error) {
	return getLocation(ctx, tx, `SELECT `+locationColumns+` FROM locations WHERE id = ? FOR UPDATE`, id)
}

func getLocation(ctx context.Context, q DBTX, query string, id uint64) (*model.Location, error) {
	l, err := scanLocation(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// GetDetail returns the location with its spots and images.
func (r *LocationRepo) GetDetail(ctx context.Context, id uint64) (*model.LocationDetail, error) {
	loc, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	det := &model.LocationDetail{Location: *loc, Spots: []model.LocationSpot{}, Images: []model.LocationImage{}}

	spots, err := r.db.QueryContext(ctx, `SELECT id, id_location, spot_name FROM location_spots WHERE id_location = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("load spots: %w", err)
	}
	defer spots.Close()
	for spots.Next() {
		var s model.LocationSpot
		if err := spots.Scan(&s.ID, &s.LocationID, &s.Name); err != nil {
			return nil, err
		}
		det.Spots = append(det.Spots, s)
	}
	if err := spots.Err(); err != nil {
		return nil, err
	}

	imgs, err := r.db.QueryContext(ctx, `SELECT id, id_location, image_url FROM location_images WHERE id_location = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	defer imgs.Close()
	for imgs.Next() {
		var im model.LocationImage
		if err := imgs.Scan(&im.ID, &im.LocationID, &im.ImageURL); err != nil {
			return nil, err
		}
		det.Images = append(det.Images, im)
	}
	return det, imgs.Err()
}

// SpotNames returns the master spot layout of a location in insertion order.
func (r *LocationRepo) SpotNames(ctx context.Context, q DBTX, locationID uint64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT spot_name FROM location_spots WHERE id_location = ? ORDER BY id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
