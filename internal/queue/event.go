// Package queue defines the payloads exchanged over RabbitMQ and the
// background consumer that turns them into push notifications.
package queue

import (
	"time"

	"github.com/chanthanathaicook/backend/internal/notify"
)

// Event types carried in Envelope.Type.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventEventCreated       = "event.created"
	EventEventStatusChanged = "event.status_changed"
	EventAdminMessage       = "admin.message"
)

// Envelope wraps one notification with the domain event that produced it.
type Envelope struct {
	Type       string         `json:"type"`
	OccurredAt string         `json:"occurred_at"`
	Message    notify.Message `json:"message"`
}

// NewEnvelope stamps m with the current UTC time.
func NewEnvelope(eventType string, m notify.Message) Envelope {
	return Envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Message:    m,
	}
}
