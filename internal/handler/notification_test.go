package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/model"
)

type memoryNotifications struct {
	tokens map[string]string // token -> device type, active only
	prefs  map[uint64]model.NotificationPreferences
}

func newMemoryNotifications() *memoryNotifications {
	return &memoryNotifications{tokens: map[string]string{}, prefs: map[uint64]model.NotificationPreferences{}}
}

func (m *memoryNotifications) UpsertToken(_ context.Context, _ uint64, token, deviceType string) error {
	m.tokens[token] = deviceType
	return nil
}

func (m *memoryNotifications) RevokeToken(_ context.Context, _ uint64, token string) error {
	delete(m.tokens, token)
	return nil
}

func (m *memoryNotifications) GetOrCreatePreferences(_ context.Context, clientID uint64) (*model.NotificationPreferences, error) {
	p, found := m.prefs[clientID]
	if !found {
		p = model.DefaultNotificationPreferences(clientID)
		m.prefs[clientID] = p
	}
	return &p, nil
}

func (m *memoryNotifications) SavePreferences(_ context.Context, p model.NotificationPreferences) error {
	m.prefs[p.ClientID] = p
	return nil
}

func TestRegisterAndRevokeToken(t *testing.T) {
	store := newMemoryNotifications()
	h := NewNotificationHandler(store, fakeClients{9: 7})

	c, rec := newCtx(http.MethodPost, "/v1/notifications/tokens", `{"token":"abcdefghijkl","deviceType":"ios"}`, 9)
	require.NoError(t, h.RegisterToken(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.Equal(t, "ios", store.tokens["abcdefghijkl"])

	for i := 0; i < 2; i++ {
		c, rec = newCtx(http.MethodDelete, "/v1/notifications/tokens", `{"token":"abcdefghijkl"}`, 9)
		require.NoError(t, h.RevokeToken(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, store.tokens)
}

func TestRegisterTokenValidation(t *testing.T) {
	h := NewNotificationHandler(newMemoryNotifications(), fakeClients{9: 7})

	c, rec := newCtx(http.MethodPost, "/v1/notifications/tokens", `{"token":"short","deviceType":"ios"}`, 9)
	require.NoError(t, h.RegisterToken(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "token must be at least 10 characters", decode(t, rec)["error"])

	c, rec = newCtx(http.MethodPost, "/v1/notifications/tokens", `{"token":"abcdefghijkl","deviceType":"blackberry"}`, 9)
	require.NoError(t, h.RegisterToken(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "deviceType must be one of: web ios android", decode(t, rec)["error"])
}

func TestPreferencesDefaultAndPatch(t *testing.T) {
	store := newMemoryNotifications()
	h := NewNotificationHandler(store, fakeClients{9: 7})

	c, rec := newCtx(http.MethodGet, "/v1/notifications/preferences", "", 9)
	require.NoError(t, h.GetPreferences(c))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, false, data["marketing"])
	assert.Equal(t, "22:00", data["quiet_hours_start"])
	assert.Equal(t, "Europe/Paris", data["timezone"])

	c, rec = newCtx(http.MethodPatch, "/v1/notifications/preferences", `{"marketing":true,"quiet_hours_end":"07:30"}`, 9)
	require.NoError(t, h.UpdatePreferences(c))
	require.Equal(t, http.StatusOK, rec.Code)
	saved := store.prefs[7]
	assert.True(t, saved.Marketing)
	assert.True(t, saved.OrderUpdates)
	require.NotNil(t, saved.QuietHoursEnd)
	assert.Equal(t, "07:30", *saved.QuietHoursEnd)
	assert.Equal(t, "22:00", *saved.QuietHoursStart)
}

func TestPreferencesPatchRejectsBadValues(t *testing.T) {
	h := NewNotificationHandler(newMemoryNotifications(), fakeClients{9: 7})

	for _, body := range []string{`{"quiet_hours_start":"25:99"}`, `{"timezone":"Mars/Olympus"}`} {
		c, rec := newCtx(http.MethodPatch, "/v1/notifications/preferences", body, 9)
		require.NoError(t, h.UpdatePreferences(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestNotificationsRequireAuthentication(t *testing.T) {
	h := NewNotificationHandler(newMemoryNotifications(), fakeClients{9: 7})
	c, rec := newCtx(http.MethodGet, "/v1/notifications/preferences", "", 0)
	require.NoError(t, h.GetPreferences(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", decode(t, rec)["error"])
}
