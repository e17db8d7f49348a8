package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chanthanathaicook/backend/internal/model"
)

// NotificationRepo stores push tokens and per-client preferences.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// UpsertToken registers (client, token) or reactivates it with the new
// device type.
func (r *NotificationRepo) UpsertToken(ctx context.Context, clientID uint64, token, deviceType string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO notification_tokens (client_id, token, device_type, is_active)
		VALUES (?, ?, ?, 1)
		ON DUPLICATE KEY UPDATE device_type = VALUES(device_type), is_active = 1, updated_at = UTC_TIMESTAMP()`,
		clientID, token, deviceType)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// RevokeToken deactivates the client's matching tokens.  Revoking an
// unknown or already inactive token is not an error.
func (r *NotificationRepo) RevokeToken(ctx context.Context, clientID uint64, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notification_tokens SET is_active = 0, updated_at = UTC_TIMESTAMP()
		WHERE client_id = ? AND token = ? AND is_active = 1`, clientID, token)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ActiveTokens lists the client's active registrations.
func (r *NotificationRepo) ActiveTokens(ctx context.Context, clientID uint64) ([]model.NotificationToken, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, client_id, token, device_type, is_active, created_at, updated_at
		FROM notification_tokens WHERE client_id = ? AND is_active = 1 ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()
	out := make([]model.NotificationToken, 0)
	for rows.Next() {
		var t model.NotificationToken
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Token, &t.DeviceType, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const prefColumns = `client_id, order_updates, event_updates, marketing, admin_messages,
	quiet_hours_start, quiet_hours_end, timezone, updated_at`

func (r *NotificationRepo) getPreferences(ctx context.Context, clientID uint64) (*model.NotificationPreferences, error) {
	var (
		p          model.NotificationPreferences
		start, end sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+prefColumns+` FROM notification_preferences WHERE client_id = ?`, clientID).
		Scan(&p.ClientID, &p.OrderUpdates, &p.EventUpdates, &p.Marketing, &p.AdminMessages, &start, &end, &p.Timezone, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.QuietHoursStart = nullStr(start)
	p.QuietHoursEnd = nullStr(end)
	return &p, nil
}

// GetOrCreatePreferences returns the client's preferences, inserting the
// default row on first access.  Concurrent first reads are harmless: the
// insert ignores an existing row.
func (r *NotificationRepo) GetOrCreatePreferences(ctx context.Context, clientID uint64) (*model.NotificationPreferences, error) {
	p, err := r.getPreferences(ctx, clientID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	def := model.DefaultNotificationPreferences(clientID)
	if _, err := r.db.ExecContext(ctx, `INSERT IGNORE INTO notification_preferences
		(client_id, order_updates, event_updates, marketing, admin_messages, quiet_hours_start, quiet_hours_end, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ClientID, def.OrderUpdates, def.EventUpdates, def.Marketing, def.AdminMessages,
		def.QuietHoursStart, def.QuietHoursEnd, def.Timezone); err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	p, err = r.getPreferences(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// SavePreferences writes the full preference row.
func (r *NotificationRepo) SavePreferences(ctx context.Context, p model.NotificationPreferences) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notification_preferences SET order_updates = ?, event_updates = ?,
		marketing = ?, admin_messages = ?, quiet_hours_start = ?, quiet_hours_end = ?, timezone = ?, updated_at = UTC_TIMESTAMP()
		WHERE client_id = ?`,
		p.OrderUpdates, p.EventUpdates, p.Marketing, p.AdminMessages, p.QuietHoursStart, p.QuietHoursEnd, p.Timezone, p.ClientID)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
