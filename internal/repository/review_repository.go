package repository

import (
	"context"
	"database/sql"

	"github.com/strikeit/strikeit-api/internal/model"
)

// ReviewRepo stores location reviews.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ListByLocation returns the reviews of a location, newest first, and the
// average rating (0 when there are none).
func (r *ReviewRepo) ListByLocation(ctx context.Context, locationID uint64) ([]model.Review, float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rv.id, rv.id_user, COALESCE(u.name, ''), rv.id_location, rv.rating, rv.comment, rv.created_at
         FROM reviews rv
         LEFT JOIN users u ON u.id = rv.id_user
         WHERE rv.id_location = ?
         ORDER BY rv.created_at DESC, rv.id DESC`, locationID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	sum := 0
	for rows.Next() {
		var rv model.Review
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.AuthorName, &rv.LocationID, &rv.Rating, &comment, &rv.CreatedAt); err != nil {
			return nil, 0, err
		}
		if comment.Valid {
			rv.Comment = &comment.String
		}
		sum += rv.Rating
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	avg := 0.0
	if len(out) > 0 {
		avg = float64(sum) / float64(len(out))
	}
	return out, avg, nil
}

// Create inserts a review and populates its ID.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id_user, id_location, rating, comment) VALUES (?, ?, ?, ?)`,
		rv.UserID, rv.LocationID, rv.Rating, rv.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}
