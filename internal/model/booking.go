package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment statuses shared by bookings and orders.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentFailed = "failed"
)

// Booking reserves one spot at a location for Duration whole hours starting
// at BookingStart. Bookings are never deleted; cancellation is a status.
type Booking struct {
	ID            uint64          `json:"id"`
	UserID        uint64          `json:"id_user"`
	LocationID    uint64          `json:"id_location"`
	LocationName  string          `json:"location_name,omitempty"`
	BookingDate   string          `json:"booking_date"` // YYYY-MM-DD
	BookingStart  time.Time       `json:"booking_start"`
	Duration      int             `json:"duration"`
	SpotNumber    string          `json:"spot_number"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BookingSlot is the projection of a booking the availability calculator
// needs: which spot, from which hour, for how long, and whether it is live.
type BookingSlot struct {
	SpotNumber    string
	StartHour     int
	Duration      int
	Status        string
	PaymentStatus string
}

// EndHour returns the exclusive end of the slot.
func (s BookingSlot) EndHour() int { return s.StartHour + s.Duration }

// HourAvailability is one row of the hourly availability grid.
type HourAvailability struct {
	Time      string `json:"time"` // "HH:00"
	IsFull    bool   `json:"is_full"`
	Remaining int    `json:"remaining"`
}

// Spot availability values.
const (
	SpotAvailable = "available"
	SpotBooked    = "booked"
)

// SpotAvailability reports whether one spot is free for the requested range.
type SpotAvailability struct {
	Number string `json:"number"`
	Status string `json:"status"`
}
