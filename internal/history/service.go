// Package history serves the order and event history of a client: it
// resolves the caller, queries the store, maps rows to views and applies
// the in-memory amount filter.
package history

import (
	"context"
	"errors"

	"github.com/chanthanathaicook/backend/internal/model"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/status"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrClientProfileNotFound  = errors.New("client profile not found")
	ErrOrderNotFound          = errors.New("order not found")
)

// Identity is the authenticated caller.  A zero UserID is anonymous.
type Identity struct {
	UserID uint64
}

// OrderStore is the order side of the repository layer.
type OrderStore interface {
	ListForClient(ctx context.Context, clientID uint64, q repository.OrderQuery) ([]repository.OrderRecord, int64, error)
	ListAll(ctx context.Context, q repository.OrderQuery) ([]repository.OrderRecord, int64, error)
	GetForClient(ctx context.Context, orderID, clientID uint64) (*repository.OrderRecord, error)
}

// EventStore lists catering events.
type EventStore interface {
	ListForClient(ctx context.Context, clientID uint64, q repository.EventQuery) ([]model.Event, int64, error)
}

// ClientResolver maps an auth identity to its client profile id.
type ClientResolver interface {
	IDByAuthUser(ctx context.Context, authUserID uint64) (uint64, error)
}

// Page is one page of a listing.  Total and TotalPages come from the count
// query; AmountFiltered tells that Data was narrowed afterwards.
type Page[T any] struct {
	Data           []T   `json:"data"`
	Total          int64 `json:"total"`
	TotalPages     int   `json:"totalPages"`
	Page           int   `json:"page"`
	PageSize       int   `json:"pageSize"`
	AmountFiltered bool  `json:"amountFiltered"`
}

type Service struct {
	orders  OrderStore
	events  EventStore
	clients ClientResolver
}

func NewService(orders OrderStore, events EventStore, clients ClientResolver) *Service {
	return &Service{orders: orders, events: events, clients: clients}
}

func (s *Service) resolve(ctx context.Context, id Identity) (uint64, error) {
	if id.UserID == 0 {
		return 0, ErrAuthenticationRequired
	}
	clientID, err := s.clients.IDByAuthUser(ctx, id.UserID)
	if errors.Is(err, repository.ErrClientNotFound) {
		return 0, ErrClientProfileNotFound
	}
	if err != nil {
		return 0, err
	}
	return clientID, nil
}

// statusFilter expands a status to every raw spelling stored for it.  An
// unknown value is matched as given.
func statusFilter(v status.Vocabulary, s string) []string {
	if s == "" {
		return nil
	}
	if raw := v.RawSpellings(s); raw != nil {
		return raw
	}
	return []string{s}
}

func orderQuery(p Params) repository.OrderQuery {
	return repository.OrderQuery{
		Page:      p.Page,
		PageSize:  p.PageSize,
		Statuses:  statusFilter(status.OrderStatus, p.Status),
		Search:    p.Search,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
	}
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func orderPage(records []repository.OrderRecord, total int64, p Params) Page[OrderView] {
	views := make([]OrderView, 0, len(records))
	for _, r := range records {
		views = append(views, MapOrder(r))
	}
	filtered := p.MinAmount != nil || p.MaxAmount != nil
	return Page[OrderView]{
		Data:           FilterByAmount(views, p.MinAmount, p.MaxAmount),
		Total:          total,
		TotalPages:     TotalPages(total, p.PageSize),
		Page:           p.Page,
		PageSize:       p.PageSize,
		AmountFiltered: filtered,
	}
}

// ListOrders returns the caller's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, id Identity, p Params) (Page[OrderView], error) {
	clientID, err := s.resolve(ctx, id)
	if err != nil {
		return Page[OrderView]{}, err
	}
	records, total, err := s.orders.ListForClient(ctx, clientID, orderQuery(p))
	if err != nil {
		return Page[OrderView]{}, err
	}
	return orderPage(records, total, p), nil
}

// ListAllOrders is the back-office listing over every client.  Access
// control is the caller's concern.
func (s *Service) ListAllOrders(ctx context.Context, p Params) (Page[OrderView], error) {
	records, total, err := s.orders.ListAll(ctx, orderQuery(p))
	if err != nil {
		return Page[OrderView]{}, err
	}
	return orderPage(records, total, p), nil
}

// GetOrder returns one of the caller's orders.
func (s *Service) GetOrder(ctx context.Context, id Identity, orderID uint64) (OrderView, error) {
	clientID, err := s.resolve(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	rec, err := s.orders.GetForClient(ctx, orderID, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return OrderView{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderView{}, err
	}
	return MapOrder(*rec), nil
}

// ListEvents returns the caller's catering events.  Amount bounds do not
// apply to events and are ignored.
func (s *Service) ListEvents(ctx context.Context, id Identity, p Params) (Page[EventView], error) {
	clientID, err := s.resolve(ctx, id)
	if err != nil {
		return Page[EventView]{}, err
	}
	events, total, err := s.events.ListForClient(ctx, clientID, repository.EventQuery{
		Page:      p.Page,
		PageSize:  p.PageSize,
		Statuses:  statusFilter(status.EventStatus, p.Status),
		Search:    p.Search,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
	})
	if err != nil {
		return Page[EventView]{}, err
	}
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, MapEvent(e))
	}
	return Page[EventView]{
		Data:       views,
		Total:      total,
		TotalPages: TotalPages(total, p.PageSize),
		Page:       p.Page,
		PageSize:   p.PageSize,
	}, nil
}
