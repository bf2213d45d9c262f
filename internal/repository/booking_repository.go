package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/strikeit/strikeit-api/internal/model"
)

// BookingRepo provides persistence for spot bookings. Booking rows are never
// deleted; cancellation and payment outcomes are status updates.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the handle for callers that run a transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const dateLayout = "2006-01-02"

// SlotsByLocationDate returns every booking at the location on the date,
// whatever its status. Callers decide which statuses count as occupying.
// Pass a transaction and forUpdate=true to lock the rows while a new
// booking is checked against them.
func (r *BookingRepo) SlotsByLocationDate(ctx context.Context, q DBTX, locationID uint64, date string, forUpdate bool) ([]model.BookingSlot, error) {
	query := `SELECT spot_number, HOUR(booking_start), duration, status, payment_status
              FROM bookings
              WHERE id_location = ? AND booking_date = ?
              ORDER BY booking_start, id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, locationID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.BookingSlot, 0)
	for rows.Next() {
		var s model.BookingSlot
		if err := rows.Scan(&s.SpotNumber, &s.StartHour, &s.Duration, &s.Status, &s.PaymentStatus); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// CreateTx inserts a booking within the caller's transaction and populates
// its generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (id_user, id_location, booking_date, booking_start, duration, spot_number, total_price, status, payment_status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.LocationID, b.BookingDate, b.BookingStart, b.Duration, b.SpotNumber,
		b.TotalPrice, b.Status, b.PaymentStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

const bookingSelect = `SELECT b.id, b.id_user, b.id_location, l.name, b.booking_date, b.booking_start,
                              b.duration, b.spot_number, b.total_price, b.status, b.payment_status, b.created_at
                       FROM bookings b
                       JOIN locations l ON l.id = b.id_location`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	var date time.Time
	err := row.Scan(&b.ID, &b.UserID, &b.LocationID, &b.LocationName, &date, &b.BookingStart,
		&b.Duration, &b.SpotNumber, &b.TotalPrice, &b.Status, &b.PaymentStatus, &b.CreatedAt)
	if err != nil {
		return b, err
	}
	b.BookingDate = date.Format(dateLayout)
	return b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, bookingSelect+` WHERE b.id_user = ? ORDER BY b.booking_start DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByIDForUser returns a booking owned by the user. A booking owned by
// somebody else is reported as ErrNotFound so that ids cannot be probed.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? AND b.id_user = ?`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetForUpdateTx loads and locks a booking by ID regardless of owner.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateStatusTx writes both status columns of a booking. Callers lock the
// row with GetForUpdateTx first, so existence is already established.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status, paymentStatus string) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ?, payment_status = ? WHERE id = ?`, status, paymentStatus, id)
	return err
}
