package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/model"
	"github.com/chanthanathaicook/backend/internal/repository"
)

type staticOrders struct {
	records []repository.OrderRecord
	lastQ   repository.OrderQuery
}

func (s *staticOrders) slice(q repository.OrderQuery) ([]repository.OrderRecord, int64, error) {
	s.lastQ = q
	start := (q.Page - 1) * q.PageSize
	if start > len(s.records) {
		start = len(s.records)
	}
	end := start + q.PageSize
	if end > len(s.records) {
		end = len(s.records)
	}
	return s.records[start:end], int64(len(s.records)), nil
}

func (s *staticOrders) ListForClient(_ context.Context, _ uint64, q repository.OrderQuery) ([]repository.OrderRecord, int64, error) {
	return s.slice(q)
}

func (s *staticOrders) ListAll(_ context.Context, q repository.OrderQuery) ([]repository.OrderRecord, int64, error) {
	return s.slice(q)
}

func (s *staticOrders) GetForClient(_ context.Context, orderID, _ uint64) (*repository.OrderRecord, error) {
	for i := range s.records {
		if s.records[i].ID == orderID {
			return &s.records[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type noEvents struct{}

func (noEvents) ListForClient(context.Context, uint64, repository.EventQuery) ([]model.Event, int64, error) {
	return nil, 0, nil
}

func sampleOrders(n int) []repository.OrderRecord {
	out := make([]repository.OrderRecord, 0, n)
	st, pay := "Confirm_e", "Pay_ en ligne"
	name := "Curry vert"
	placed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		client := uint64(7)
		out = append(out, repository.OrderRecord{
			ID: uint64(i), ClientID: &client, PlacedAt: &placed, Status: &st, PaymentStatus: &pay,
			Items: []repository.LineItemRecord{{ID: uint64(i), Quantity: 2, UnitPrice: decimal.RequireFromString("9.50"), DishName: &name}},
		})
	}
	return out
}

func TestHistoryListOrdersEnvelope(t *testing.T) {
	orders := &staticOrders{records: sampleOrders(12)}
	h := NewHistoryHandler(history.NewService(orders, noEvents{}, fakeClients{9: 7}))

	c, rec := newCtx(http.MethodGet, "/v1/historique/commandes?page=2&pageSize=5&status=Confirm%C3%A9e", "", 9)
	require.NoError(t, h.ListOrders(c))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(12), body["total"])
	assert.Equal(t, float64(3), body["totalPages"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, false, body["amountFiltered"])
	assert.Len(t, body["data"], 5)
	assert.Contains(t, orders.lastQ.Statuses, "Confirm_e")

	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Confirmée", first["statut_commande"])
	assert.Equal(t, true, first["isPaid"])
}

func TestHistoryListOrdersErrors(t *testing.T) {
	h := NewHistoryHandler(history.NewService(&staticOrders{}, noEvents{}, fakeClients{9: 7}))

	c, rec := newCtx(http.MethodGet, "/v1/historique/commandes", "", 0)
	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newCtx(http.MethodGet, "/v1/historique/commandes", "", 1)
	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "client profile not found", decode(t, rec)["error"])

	c, rec = newCtx(http.MethodGet, "/v1/historique/commandes?pageSize=500", "", 9)
	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newCtx(http.MethodGet, "/v1/historique/commandes?page=1000000000000000000&pageSize=50", "", 9)
	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestHistoryGetOrderNotFound(t *testing.T) {
	h := NewHistoryHandler(history.NewService(&staticOrders{records: sampleOrders(1)}, noEvents{}, fakeClients{9: 7}))

	c, rec := newCtx(http.MethodGet, "/v1/historique/commandes/42", "", 9)
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.NoError(t, h.GetOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newCtx(http.MethodGet, "/v1/historique/commandes/abc", "", 9)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.GetOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
