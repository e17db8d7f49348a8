package model

import "time"

// Device types accepted for push tokens.
const (
	DeviceWeb     = "web"
	DeviceIOS     = "ios"
	DeviceAndroid = "android"
)

// NotificationToken is one push registration of a client device.  Tokens are
// never deleted; revocation clears IsActive.
type NotificationToken struct {
	ID         uint64    `json:"id"`
	ClientID   uint64    `json:"client_id"`
	Token      string    `json:"token"`
	DeviceType string    `json:"device_type"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NotificationPreferences holds one row per client.  Quiet hours are local
// HH:MM times in Timezone; an end before start wraps past midnight.
type NotificationPreferences struct {
	ClientID        uint64    `json:"client_id"`
	OrderUpdates    bool      `json:"order_updates"`
	EventUpdates    bool      `json:"event_updates"`
	Marketing       bool      `json:"marketing"`
	AdminMessages   bool      `json:"admin_messages"`
	QuietHoursStart *string   `json:"quiet_hours_start"`
	QuietHoursEnd   *string   `json:"quiet_hours_end"`
	Timezone        string    `json:"timezone"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultNotificationPreferences is the row created on first read.
func DefaultNotificationPreferences(clientID uint64) NotificationPreferences {
	start, end := "22:00", "08:00"
	return NotificationPreferences{
		ClientID:        clientID,
		OrderUpdates:    true,
		EventUpdates:    true,
		Marketing:       false,
		AdminMessages:   true,
		QuietHoursStart: &start,
		QuietHoursEnd:   &end,
		Timezone:        "Europe/Paris",
	}
}

// NotificationPreferencesPatch is a partial update; nil fields are left alone.
type NotificationPreferencesPatch struct {
	OrderUpdates    *bool   `json:"order_updates"`
	EventUpdates    *bool   `json:"event_updates"`
	Marketing       *bool   `json:"marketing"`
	AdminMessages   *bool   `json:"admin_messages"`
	QuietHoursStart *string `json:"quiet_hours_start" validate:"omitempty,datetime=15:04"`
	QuietHoursEnd   *string `json:"quiet_hours_end" validate:"omitempty,datetime=15:04"`
	Timezone        *string `json:"timezone" validate:"omitempty,timezone"`
}

// Apply merges p into prefs and returns the result.
func (p NotificationPreferencesPatch) Apply(prefs NotificationPreferences) NotificationPreferences {
	if p.OrderUpdates != nil {
		prefs.OrderUpdates = *p.OrderUpdates
	}
	if p.EventUpdates != nil {
		prefs.EventUpdates = *p.EventUpdates
	}
	if p.Marketing != nil {
		prefs.Marketing = *p.Marketing
	}
	if p.AdminMessages != nil {
		prefs.AdminMessages = *p.AdminMessages
	}
	if p.QuietHoursStart != nil {
		prefs.QuietHoursStart = p.QuietHoursStart
	}
	if p.QuietHoursEnd != nil {
		prefs.QuietHoursEnd = p.QuietHoursEnd
	}
	if p.Timezone != nil {
		prefs.Timezone = *p.Timezone
	}
	return prefs
}
