// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the
// request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/chanthanathaicook/backend/internal/config"
	"github.com/chanthanathaicook/backend/internal/queue"
)

// Publisher sends notification envelopes to the notification queue.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(cfg config.QueueConfig) *Publisher {
	return &Publisher{url: cfg.URL, queue: cfg.NotificationQueue}
}

// Publish sends env as a persistent JSON message.  Each call opens its own
// connection.
func (p *Publisher) Publish(ctx context.Context, env queue.Envelope) error {
	logger := log.WithFields(log.Fields{"event": env.Type, "message_id": env.Message.ID})
	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		logger.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(env)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.Message.ID,
		Type:         env.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		logger.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
