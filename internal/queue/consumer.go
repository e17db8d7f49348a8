package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/chanthanathaicook/backend/internal/config"
	"github.com/chanthanathaicook/backend/internal/notify"
)

// Dispatcher delivers one notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, m notify.Message) (notify.Result, error)
}

// StartNotificationConsumer connects to RabbitMQ, declares the notification
// queue (durable) and hands every envelope to d.  It reconnects with
// exponential backoff and returns only when ctx is cancelled.  Messages that
// cannot be decoded or dispatched are rejected without requeue.
func StartNotificationConsumer(ctx context.Context, cfg config.QueueConfig, d Dispatcher) error {
	logger := log.WithField("component", "notification-consumer")
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			logger.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, cfg, d)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Warn("consume loop ended; reconnecting")
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.QueueConfig, d Dispatcher) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		log.WithError(err).Warn("notification-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(cfg.NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleDelivery(ctx, m.Body, d); err != nil {
				log.WithError(err).Warn("notification-consumer: handle message failed")
				_ = m.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = m.Ack(false)
		}
	}
}

// HandleDelivery decodes one envelope and dispatches its message.
func HandleDelivery(ctx context.Context, body []byte, d Dispatcher) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if env.Message.ClientID == 0 {
		return errors.New("message without recipient")
	}
	res, err := d.Dispatch(ctx, env.Message)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", env.Type, err)
	}
	log.WithFields(log.Fields{
		"event":      env.Type,
		"message_id": env.Message.ID,
		"client_id":  env.Message.ClientID,
		"sent":       res.Sent,
		"failed":     res.Failed,
		"skipped":    res.Skipped,
	}).Info("notification processed")
	return nil
}
