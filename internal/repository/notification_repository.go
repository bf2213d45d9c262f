package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/strikeit/strikeit-api/internal/model"
)

// NotificationRepo stores the in-app inbox. Rows with published_at NULL form
// the push outbox drained by the relay.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts one notification using q, which may be the pool or a
// transaction, and populates its ID.
func (r *NotificationRepo) Create(ctx context.Context, q DBTX, n *model.Notification) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO notifications (id_user, title, body, type, ref_id) VALUES (?, ?, ?, ?, ?)`,
		n.UserID, n.Title, n.Body, n.Type, n.RefID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// CreateForAllUsersTx fans one notification out to every user and returns
// the number of rows written.
func (r *NotificationRepo) CreateForAllUsersTx(ctx context.Context, tx *sql.Tx, title, body, typ string, refID *uint64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (id_user, title, body, type, ref_id)
         SELECT id, ?, ?, ?, ? FROM users`,
		title, body, typ, refID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const notificationColumns = `id, id_user, title, body, type, ref_id, is_read, attempts, published_at, created_at`

func scanNotifications(rows *sql.Rows) ([]model.Notification, error) {
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var ref sql.NullInt64
		var published sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Type, &ref, &n.IsRead, &n.Attempts, &published, &n.CreatedAt); err != nil {
			return nil, err
		}
		if ref.Valid {
			v := uint64(ref.Int64)
			n.RefID = &v
		}
		if published.Valid {
			t := published.Time
			n.PublishedAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListByUser returns the user's inbox, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id_user = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

// MarkRead marks one of the user's notifications as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM notifications WHERE id = ? AND id_user = ?`, id, userID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND id_user = ?`, id, userID)
	return err
}

// MarkAllRead marks the whole inbox of the user as read and returns how
// many rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id_user = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PendingOutbox returns up to limit unpublished notifications that have not
// exhausted their publish attempts, oldest first.
func (r *NotificationRepo) PendingOutbox(ctx context.Context, limit, maxAttempts int) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
         WHERE published_at IS NULL AND attempts < ?
         ORDER BY id LIMIT ?`,
		maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

// MarkPublished records that the broker accepted the notification.
func (r *NotificationRepo) MarkPublished(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET published_at = ?, attempts = attempts + 1 WHERE id = ?`, at, id)
	return err
}

// RecordFailure counts a failed publish attempt.
func (r *NotificationRepo) RecordFailure(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET attempts = attempts + 1 WHERE id = ?`, id)
	return err
}
