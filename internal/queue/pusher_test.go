package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

type fakeUsers map[uint64]*model.User

func (f fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if id == 500 {
		return nil, errors.New("db down")
	}
	u, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func TestLogPusher(t *testing.T) {
	token := "fcm-token"
	users := fakeUsers{
		1: {ID: 1, Name: "Ada", PushToken: &token},
		2: {ID: 2, Name: "Tanpa Token"},
	}
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewLogPusher(users, zap.New(core))
	ctx := context.Background()

	assert.NoError(t, p.Push(ctx, NotificationEvent{NotificationID: 10, UserID: 1, Type: "discount", Title: "Promo"}))
	assert.NoError(t, p.Push(ctx, NotificationEvent{NotificationID: 11, UserID: 2}))
	assert.NoError(t, p.Push(ctx, NotificationEvent{NotificationID: 12, UserID: 99}))
	assert.Error(t, p.Push(ctx, NotificationEvent{NotificationID: 13, UserID: 500}))

	assert.Equal(t, 1, logs.FilterMessage("push delivered").Len())
	assert.Equal(t, 1, logs.FilterMessage("push skipped: no device token").Len())
	assert.Equal(t, 1, logs.FilterMessage("push skipped: unknown user").Len())
}
