package model

import "time"

// Notification types.
const (
	NotifyBookingReminder = "booking_reminder"
	NotifyDiscount        = "discount"
	NotifyCommunity       = "community"
)

// Notification is shown in the app's inbox and pushed to the device. The
// row is also the outbox entry: PublishedAt stays nil until the relay has
// handed it to the broker.
type Notification struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"id_user"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Type        string     `json:"type"`
	RefID       *uint64    `json:"ref_id"`
	IsRead      bool       `json:"is_read"`
	Attempts    int        `json:"-"`
	PublishedAt *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}
