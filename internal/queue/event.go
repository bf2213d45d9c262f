// Package queue moves notifications from the database outbox through
// RabbitMQ to the push provider.
package queue

import (
	"time"

	"github.com/strikeit/strikeit-api/internal/model"
)

// NotificationQueue is the durable queue push events travel on.
const NotificationQueue = "notification.push"

// NotificationEvent is published once per outbox row. It carries enough to
// deliver the push without reading the notifications table again.
type NotificationEvent struct {
	NotificationID uint64  `json:"notification_id"`
	UserID         uint64  `json:"user_id"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	RefID          *uint64 `json:"ref_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// EventFromNotification builds the wire event for an outbox row.
func EventFromNotification(n model.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Body:           n.Body,
		RefID:          n.RefID,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
