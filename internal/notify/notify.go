// Package notify delivers push messages to a client's registered devices
// according to their notification preferences.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // quiet hours are evaluated in client timezones

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/chanthanathaicook/backend/internal/model"
)

// Categories map to the preference toggles.
const (
	CategoryOrderUpdates  = "order_updates"
	CategoryEventUpdates  = "event_updates"
	CategoryMarketing     = "marketing"
	CategoryAdminMessages = "admin_messages"
)

// Payload is what a device receives.
type Payload struct {
	MessageID string            `json:"message_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
}

// Message is one notification addressed to a client.
type Message struct {
	ID       string            `json:"id"`
	ClientID uint64            `json:"client_id"`
	Category string            `json:"category"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
}

// NewMessage returns a message with a fresh id.
func NewMessage(clientID uint64, category, title, body string, data map[string]string) Message {
	return Message{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Category: category,
		Title:    title,
		Body:     body,
		Data:     data,
	}
}

// Sender is the push transport.  Implementations report a failed
// delivery as an error.
type Sender interface {
	Send(ctx context.Context, token model.NotificationToken, p Payload) error
}

// LogSender writes deliveries to the log instead of a push service.
type LogSender struct{}

func (LogSender) Send(_ context.Context, token model.NotificationToken, p Payload) error {
	log.WithFields(log.Fields{
		"client_id":  token.ClientID,
		"device":     token.DeviceType,
		"message_id": p.MessageID,
	}).Infof("push: %s", p.Title)
	return nil
}

// Store is what the dispatcher reads.
type Store interface {
	GetOrCreatePreferences(ctx context.Context, clientID uint64) (*model.NotificationPreferences, error)
	ActiveTokens(ctx context.Context, clientID uint64) ([]model.NotificationToken, error)
}

// Skip reasons reported in Result.
const (
	SkipDisabled   = "category disabled"
	SkipQuietHours = "quiet hours"
	SkipNoDevices  = "no active device"
)

// Result summarizes one dispatch.
type Result struct {
	Sent    int
	Failed  int
	Skipped string
}

// Dispatcher routes messages to devices.  Failures are logged and counted,
// never retried.
type Dispatcher struct {
	store  Store
	sender Sender
	now    func() time.Time
}

func NewDispatcher(store Store, sender Sender) *Dispatcher {
	return &Dispatcher{store: store, sender: sender, now: time.Now}
}

// Dispatch delivers m to every active device of its recipient unless the
// recipient disabled the category or is in quiet hours.  Admin messages
// ignore quiet hours.
func (d *Dispatcher) Dispatch(ctx context.Context, m Message) (Result, error) {
	prefs, err := d.store.GetOrCreatePreferences(ctx, m.ClientID)
	if err != nil {
		return Result{}, fmt.Errorf("load preferences: %w", err)
	}
	enabled, err := categoryEnabled(*prefs, m.Category)
	if err != nil {
		return Result{}, err
	}
	if !enabled {
		return Result{Skipped: SkipDisabled}, nil
	}
	if m.Category != CategoryAdminMessages && InQuietHours(*prefs, d.now()) {
		return Result{Skipped: SkipQuietHours}, nil
	}

	tokens, err := d.store.ActiveTokens(ctx, m.ClientID)
	if err != nil {
		return Result{}, fmt.Errorf("load tokens: %w", err)
	}
	if len(tokens) == 0 {
		return Result{Skipped: SkipNoDevices}, nil
	}
	p := Payload{MessageID: m.ID, Title: m.Title, Body: m.Body, Data: m.Data}
	var res Result
	for _, t := range tokens {
		if err := d.sender.Send(ctx, t, p); err != nil {
			res.Failed++
			log.WithError(err).WithFields(log.Fields{
				"client_id":  m.ClientID,
				"token_id":   t.ID,
				"message_id": m.ID,
			}).Warn("push delivery failed")
			continue
		}
		res.Sent++
	}
	return res, nil
}

func categoryEnabled(p model.NotificationPreferences, category string) (bool, error) {
	switch category {
	case CategoryOrderUpdates:
		return p.OrderUpdates, nil
	case CategoryEventUpdates:
		return p.EventUpdates, nil
	case CategoryMarketing:
		return p.Marketing, nil
	case CategoryAdminMessages:
		return p.AdminMessages, nil
	}
	return false, fmt.Errorf("unknown notification category %q", category)
}

// InQuietHours reports whether now falls in the recipient's quiet window,
// evaluated in their timezone.  A window whose end precedes its start
// spans midnight.  Missing or malformed bounds disable the window.
func InQuietHours(p model.NotificationPreferences, now time.Time) bool {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}
	start, ok1 := minuteOfDay(*p.QuietHoursStart)
	end, ok2 := minuteOfDay(*p.QuietHoursEnd)
	if !ok1 || !ok2 || start == end {
		return false
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	m := local.Hour()*60 + local.Minute()
	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

func minuteOfDay(hhmm string) (int, bool) {
	h, mm, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, false
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
