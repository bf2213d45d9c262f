package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/metrics"
	"github.com/strikeit/strikeit-api/internal/model"
)

// Outbox is the part of the notification repository the relay needs.
type Outbox interface {
	PendingOutbox(ctx context.Context, limit, maxAttempts int) ([]model.Notification, error)
	MarkPublished(ctx context.Context, id uint64, at time.Time) error
	RecordFailure(ctx context.Context, id uint64) error
}

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
)

// Relay periodically publishes unpublished notifications. A row is marked
// published only after the broker accepted it, so delivery is at least
// once; rows that keep failing stop being retried after maxAttempts.
type Relay struct {
	outbox      Outbox
	publisher   Publisher
	logger      *zap.Logger
	interval    time.Duration
	maxAttempts int
	batchSize   int
	now         func() time.Time
}

func NewRelay(outbox Outbox, publisher Publisher, logger *zap.Logger, interval time.Duration, maxAttempts int) *Relay {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Relay{
		outbox:      outbox,
		publisher:   publisher,
		logger:      logger,
		interval:    interval,
		maxAttempts: maxAttempts,
		batchSize:   defaultBatchSize,
		now:         time.Now,
	}
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Info("notification relay started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("notification relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("notification relay flush failed", zap.Error(err))
			}
		}
	}
}

// Flush publishes one batch and returns how many rows were published.
// Publish failures are recorded per row and do not abort the batch.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.outbox.PendingOutbox(ctx, r.batchSize, r.maxAttempts)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, n := range pending {
		if err := r.publisher.Publish(ctx, EventFromNotification(n)); err != nil {
			metrics.RecordNotificationPublished("error")
			r.logger.Warn("publish notification failed",
				zap.Uint64("notification_id", n.ID),
				zap.Int("attempt", n.Attempts+1),
				zap.Error(err))
			if err := r.outbox.RecordFailure(ctx, n.ID); err != nil {
				return published, err
			}
			continue
		}
		metrics.RecordNotificationPublished("ok")
		if err := r.outbox.MarkPublished(ctx, n.ID, r.now().UTC()); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
