package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/notify"
)

type stubDispatcher struct {
	got []notify.Message
	err error
}

func (s *stubDispatcher) Dispatch(_ context.Context, m notify.Message) (notify.Result, error) {
	s.got = append(s.got, m)
	return notify.Result{Sent: 1}, s.err
}

func TestHandleDelivery(t *testing.T) {
	msg := notify.NewMessage(3, notify.CategoryOrderUpdates, "Commande confirmée", "#42", map[string]string{"order_id": "42"})
	body, err := json.Marshal(NewEnvelope(EventOrderStatusChanged, msg))
	require.NoError(t, err)

	d := &stubDispatcher{}
	require.NoError(t, HandleDelivery(context.Background(), body, d))
	require.Len(t, d.got, 1)
	assert.Equal(t, msg, d.got[0])
}

func TestHandleDeliveryRejects(t *testing.T) {
	d := &stubDispatcher{}
	assert.Error(t, HandleDelivery(context.Background(), []byte("{not json"), d))

	body, err := json.Marshal(NewEnvelope(EventAdminMessage, notify.Message{Category: notify.CategoryAdminMessages}))
	require.NoError(t, err)
	assert.Error(t, HandleDelivery(context.Background(), body, d))
	assert.Empty(t, d.got)

	d.err = errors.New("db down")
	body, err = json.Marshal(NewEnvelope(EventAdminMessage, notify.NewMessage(1, notify.CategoryAdminMessages, "t", "b", nil)))
	require.NoError(t, err)
	assert.Error(t, HandleDelivery(context.Background(), body, d))
}
