package queue

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

// Pusher delivers one event to the user's device.
type Pusher interface {
	Push(ctx context.Context, ev NotificationEvent) error
}

// UserLookup resolves the recipient of a push.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// LogPusher stands in for the mobile push provider: it resolves the
// recipient's device token and logs the delivery. Users without a token are
// skipped, as are users that no longer exist.
type LogPusher struct {
	users  UserLookup
	logger *zap.Logger
}

func NewLogPusher(users UserLookup, logger *zap.Logger) *LogPusher {
	return &LogPusher{users: users, logger: logger}
}

func (p *LogPusher) Push(ctx context.Context, ev NotificationEvent) error {
	u, err := p.users.GetByID(ctx, ev.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			p.logger.Info("push skipped: unknown user", zap.Uint64("user_id", ev.UserID), zap.Uint64("notification_id", ev.NotificationID))
			return nil
		}
		return err
	}
	if u.PushToken == nil || *u.PushToken == "" {
		p.logger.Debug("push skipped: no device token", zap.Uint64("user_id", ev.UserID))
		return nil
	}
	p.logger.Info("push delivered",
		zap.Uint64("notification_id", ev.NotificationID),
		zap.Uint64("user_id", ev.UserID),
		zap.String("type", ev.Type),
		zap.String("title", ev.Title))
	return nil
}
