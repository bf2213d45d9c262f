package service

import (
	"context"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

// Notifier queues a notification for delivery.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// OutboxNotifier writes the notification to the inbox table. The queue
// relay later picks it up and publishes it for push delivery.
type OutboxNotifier struct {
	repo *repository.NotificationRepo
	db   repository.DBTX
}

func NewOutboxNotifier(repo *repository.NotificationRepo, db repository.DBTX) *OutboxNotifier {
	return &OutboxNotifier{repo: repo, db: db}
}

func (n *OutboxNotifier) Notify(ctx context.Context, notif *model.Notification) error {
	return n.repo.Create(ctx, n.db, notif)
}
