package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/model"
)

type memStore struct {
	prefs  model.NotificationPreferences
	tokens []model.NotificationToken
}

func (s *memStore) GetOrCreatePreferences(context.Context, uint64) (*model.NotificationPreferences, error) {
	p := s.prefs
	return &p, nil
}

func (s *memStore) ActiveTokens(context.Context, uint64) ([]model.NotificationToken, error) {
	return s.tokens, nil
}

type recSender struct {
	sent []string
	fail map[string]bool
}

func (r *recSender) Send(_ context.Context, t model.NotificationToken, _ Payload) error {
	if r.fail[t.Token] {
		return errors.New("unregistered")
	}
	r.sent = append(r.sent, t.Token)
	return nil
}

func newTestDispatcher(at time.Time) (*Dispatcher, *memStore, *recSender) {
	store := &memStore{
		prefs: model.DefaultNotificationPreferences(3),
		tokens: []model.NotificationToken{
			{ID: 1, ClientID: 3, Token: "token-aaaaaaaa", DeviceType: model.DeviceWeb, IsActive: true},
			{ID: 2, ClientID: 3, Token: "token-bbbbbbbb", DeviceType: model.DeviceIOS, IsActive: true},
		},
	}
	sender := &recSender{fail: map[string]bool{}}
	d := NewDispatcher(store, sender)
	d.now = func() time.Time { return at }
	return d, store, sender
}

// 12:00 UTC is 14:00 in Paris during summer time.
var noon = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func TestDispatchSendsToEveryDevice(t *testing.T) {
	d, _, sender := newTestDispatcher(noon)
	res, err := d.Dispatch(context.Background(), NewMessage(3, CategoryOrderUpdates, "Commande prête", "", nil))
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 2}, res)
	assert.Equal(t, []string{"token-aaaaaaaa", "token-bbbbbbbb"}, sender.sent)
}

func TestDispatchCountsFailures(t *testing.T) {
	d, _, sender := newTestDispatcher(noon)
	sender.fail["token-aaaaaaaa"] = true
	res, err := d.Dispatch(context.Background(), NewMessage(3, CategoryOrderUpdates, "t", "b", nil))
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1, Failed: 1}, res)
}

func TestDispatchHonoursDisabledCategory(t *testing.T) {
	d, _, sender := newTestDispatcher(noon)
	res, err := d.Dispatch(context.Background(), NewMessage(3, CategoryMarketing, "Promo", "", nil))
	require.NoError(t, err)
	assert.Equal(t, SkipDisabled, res.Skipped)
	assert.Empty(t, sender.sent)
}

func TestDispatchQuietHours(t *testing.T) {
	// 21:30 UTC is 23:30 in Paris.
	late := time.Date(2024, 7, 1, 21, 30, 0, 0, time.UTC)
	d, _, sender := newTestDispatcher(late)

	res, err := d.Dispatch(context.Background(), NewMessage(3, CategoryOrderUpdates, "t", "b", nil))
	require.NoError(t, err)
	assert.Equal(t, SkipQuietHours, res.Skipped)
	assert.Empty(t, sender.sent)

	res, err = d.Dispatch(context.Background(), NewMessage(3, CategoryAdminMessages, "Fermeture", "b", nil))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
}

func TestDispatchNoDevices(t *testing.T) {
	d, store, _ := newTestDispatcher(noon)
	store.tokens = nil
	res, err := d.Dispatch(context.Background(), NewMessage(3, CategoryOrderUpdates, "t", "b", nil))
	require.NoError(t, err)
	assert.Equal(t, SkipNoDevices, res.Skipped)
}

func TestDispatchUnknownCategory(t *testing.T) {
	d, _, _ := newTestDispatcher(noon)
	_, err := d.Dispatch(context.Background(), NewMessage(3, "weather", "t", "b", nil))
	assert.Error(t, err)
}

func TestInQuietHours(t *testing.T) {
	start, end := "09:00", "17:00"
	p := model.NotificationPreferences{QuietHoursStart: &start, QuietHoursEnd: &end, Timezone: "UTC"}
	assert.True(t, InQuietHours(p, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, InQuietHours(p, time.Date(2024, 1, 1, 16, 59, 0, 0, time.UTC)))
	assert.False(t, InQuietHours(p, time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)))

	wrapStart, wrapEnd := "22:00", "08:00"
	p = model.NotificationPreferences{QuietHoursStart: &wrapStart, QuietHoursEnd: &wrapEnd, Timezone: "Europe/Paris"}
	// 06:30 UTC is 07:30 in Paris in winter.
	assert.True(t, InQuietHours(p, time.Date(2024, 1, 1, 6, 30, 0, 0, time.UTC)))
	assert.False(t, InQuietHours(p, time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC)))

	p.QuietHoursEnd = nil
	assert.False(t, InQuietHours(p, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)))
}
