package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// StartPushConsumer consumes NotificationQueue and hands each event to
// pusher. It reconnects with exponential backoff whenever the broker goes
// away and returns only when ctx is cancelled.
func StartPushConsumer(ctx context.Context, url string, pusher Pusher, logger *zap.Logger) error {
	log := logger.With(zap.String("queue", NotificationQueue))
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("push consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, pusher, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("push consumer: loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, pusher Pusher, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("push consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	log.Info("push consumer: consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, d.Body, pusher); err != nil {
				requeue := !errors.Is(err, errMalformed) && !d.Redelivered
				log.Error("push consumer: handle message failed", zap.Error(err), zap.Bool("requeue", requeue))
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// errMalformed marks payloads that can never be delivered; they are
// dropped instead of requeued.
var errMalformed = errors.New("malformed notification event")

// handleMessage decodes one delivery and pushes it. A push failure is
// requeued once; the inbox row stays readable either way.
func handleMessage(ctx context.Context, body []byte, pusher Pusher) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.NotificationID == 0 || ev.UserID == 0 {
		return fmt.Errorf("%w: missing ids", errMalformed)
	}
	if err := pusher.Push(ctx, ev); err != nil {
		return fmt.Errorf("push notification %d: %w", ev.NotificationID, err)
	}
	return nil
}
