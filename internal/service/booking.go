package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/metrics"
	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	LocationID  uint64 `json:"id_location" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	StartHour   int    `json:"start_hour" validate:"gte=0,lte=23"`
	Duration    int    `json:"duration" validate:"required,gte=1,lte=24"`
	SpotNumber  string `json:"spot_number" validate:"required,max=10"`
}

// allowedTransitions lists the status moves an admin may make.
var allowedTransitions = map[string][]string{
	model.BookingPending:   {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCompleted, model.BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// BookingService creates bookings and moves them through their lifecycle.
type BookingService struct {
	locations *repository.LocationRepo
	bookings  *repository.BookingRepo
	logger    *zap.Logger
	openHour  int
	closeHour int
}

func NewBookingService(locations *repository.LocationRepo, bookings *repository.BookingRepo, logger *zap.Logger, openHour, closeHour int) *BookingService {
	return &BookingService{
		locations: locations,
		bookings:  bookings,
		logger:    logger,
		openHour:  openHour,
		closeHour: closeHour,
	}
}

// Create books one spot. The location row is locked for the whole
// transaction, so two requests for the same location are checked and
// inserted one after the other and cannot both take the last place.
func (s *BookingService) Create(ctx context.Context, userID uint64, req CreateBookingRequest) (*model.Booking, error) {
	day, err := time.ParseInLocation("2006-01-02", req.BookingDate, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if req.Duration < 1 || req.StartHour < s.openHour || req.StartHour+req.Duration > s.closeHour {
		return nil, ErrOutsideOperatingHours
	}

	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	loc, err := s.locations.LockTx(ctx, tx, req.LocationID)
	if err != nil {
		return nil, err
	}
	master, err := s.locations.SpotNames(ctx, tx, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("load spots: %w", err)
	}
	slots, err := s.bookings.SlotsByLocationDate(ctx, tx, loc.ID, req.BookingDate, true)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	if !containsSpot(KnownSpots(master, slots), req.SpotNumber) {
		return nil, ErrUnknownSpot
	}
	hour := req.StartHour
	if SpotBooked(req.SpotNumber, slots, &hour, req.Duration) {
		return nil, ErrSpotTaken
	}
	// Without a master layout there is no capacity figure; only the spot
	// check above applies.
	if capacity := len(master); capacity > 0 {
		usage := HourlyUsage(slots, req.StartHour, req.StartHour+req.Duration)
		for _, used := range usage {
			if used >= capacity {
				return nil, ErrLocationFull
			}
		}
	}

	b := &model.Booking{
		UserID:        userID,
		LocationID:    loc.ID,
		LocationName:  loc.Name,
		BookingDate:   req.BookingDate,
		BookingStart:  day.Add(time.Duration(req.StartHour) * time.Hour),
		Duration:      req.Duration,
		SpotNumber:    req.SpotNumber,
		TotalPrice:    loc.PricePerHour.Mul(decimal.NewFromInt(int64(req.Duration))),
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentUnpaid,
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	metrics.RecordBookingCreated()
	s.logger.Info("booking created",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("user_id", userID),
		zap.Uint64("location_id", loc.ID),
		zap.String("spot", b.SpotNumber),
		zap.Time("start", b.BookingStart))
	return b, nil
}

func containsSpot(spots []string, name string) bool {
	for _, s := range spots {
		if s == name {
			return true
		}
	}
	return false
}

// Cancel cancels the user's own pending or confirmed booking.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	return s.update(ctx, bookingID, func(b *model.Booking) error {
		if b.UserID != userID {
			return repository.ErrNotFound
		}
		if !CanTransition(b.Status, model.BookingCancelled) {
			return ErrInvalidTransition
		}
		b.Status = model.BookingCancelled
		return nil
	})
}

// RecordPayment stores the outcome of a payment for the user's booking.
// A successful payment confirms a pending booking.
func (s *BookingService) RecordPayment(ctx context.Context, userID, bookingID uint64, paymentStatus string) (*model.Booking, error) {
	return s.update(ctx, bookingID, func(b *model.Booking) error {
		if b.UserID != userID {
			return repository.ErrNotFound
		}
		if b.Status == model.BookingCancelled || b.Status == model.BookingCompleted || b.PaymentStatus == model.PaymentPaid {
			return ErrInvalidTransition
		}
		switch paymentStatus {
		case model.PaymentPaid:
			b.PaymentStatus = model.PaymentPaid
			if b.Status == model.BookingPending {
				b.Status = model.BookingConfirmed
			}
		case model.PaymentFailed:
			b.PaymentStatus = model.PaymentFailed
		default:
			return ErrInvalidTransition
		}
		return nil
	})
}

// SetStatus is the admin transition: pending→confirmed|cancelled and
// confirmed→completed|cancelled.
func (s *BookingService) SetStatus(ctx context.Context, bookingID uint64, status string) (*model.Booking, error) {
	return s.update(ctx, bookingID, func(b *model.Booking) error {
		if !CanTransition(b.Status, status) {
			return ErrInvalidTransition
		}
		b.Status = status
		return nil
	})
}

// update locks the booking, lets mutate change it, and writes both status
// columns back.
func (s *BookingService) update(ctx context.Context, bookingID uint64, mutate func(*model.Booking) error) (*model.Booking, error) {
	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	from := b.Status
	if err := mutate(b); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, b.Status, b.PaymentStatus); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	s.logger.Info("booking updated",
		zap.Uint64("booking_id", b.ID),
		zap.String("from", from),
		zap.String("status", b.Status),
		zap.String("payment_status", b.PaymentStatus))
	return b, nil
}
