package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/export"
	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/notify"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/status"
)

// exportMaxPages caps one spreadsheet export.
const exportMaxPages = 200

// AdminOrderHandler is the back-office view of orders and catering events.
type AdminOrderHandler struct {
	Svc    *history.Service
	Orders *repository.OrderRepo
	Events *repository.EventRepo
	Pub    EventPublisher
	now    func() time.Time
}

func NewAdminOrderHandler(svc *history.Service, orders *repository.OrderRepo, events *repository.EventRepo, pub EventPublisher) *AdminOrderHandler {
	return &AdminOrderHandler{Svc: svc, Orders: orders, Events: events, Pub: pub, now: time.Now}
}

type orderStatusReq struct {
	OrderStatus   *string `json:"statutCommande"`
	PaymentStatus *string `json:"statutPaiement"`
}

type eventStatusReq struct {
	Status string `json:"statutEvenement" validate:"required"`
}

// List handles GET /v1/admin/commandes.
func (h *AdminOrderHandler) List(c echo.Context) error {
	p, err := history.ParseParams(c.QueryParams())
	if err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	page, err := h.Svc.ListAllOrders(ctx, p)
	if err != nil {
		return respondError(c, err, "unable to load orders")
	}
	return c.JSON(http.StatusOK, pageBody(page))
}

// Get handles GET /v1/admin/commandes/:id.
func (h *AdminOrderHandler) Get(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	rec, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "unable to load order")
	}
	return ok(c, http.StatusOK, echo.Map{"data": history.MapOrder(*rec)})
}

// UpdateStatus handles PATCH /v1/admin/commandes/:id/statut.  Values must
// be canonical labels.
func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}
	var req orderStatusReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if req.OrderStatus == nil && req.PaymentStatus == nil {
		return fail(c, http.StatusBadRequest, "statutCommande or statutPaiement is required")
	}
	if req.OrderStatus != nil && !status.OrderStatus.IsCanonical(*req.OrderStatus) {
		return fail(c, http.StatusBadRequest, "statutCommande is invalid")
	}
	if req.PaymentStatus != nil && !status.PaymentStatus.IsCanonical(*req.PaymentStatus) {
		return fail(c, http.StatusBadRequest, "statutPaiement is invalid")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := h.Orders.UpdateStatus(ctx, id, req.OrderStatus, req.PaymentStatus)
	if err != nil {
		return respondError(c, err, "unable to update order")
	}

	if clientID != 0 {
		body := fmt.Sprintf("Votre commande n°%d a été mise à jour.", id)
		if req.OrderStatus != nil {
			body = fmt.Sprintf("Votre commande n°%d est maintenant : %s.", id, *req.OrderStatus)
		}
		publish(c, h.Pub, queue.NewEnvelope(queue.EventOrderStatusChanged, notify.NewMessage(
			clientID, notify.CategoryOrderUpdates, "Mise à jour de commande", body,
			map[string]string{"order_id": fmt.Sprint(id)},
		)))
	}
	return ok(c, http.StatusOK, echo.Map{"id": id})
}

// TogglePin handles PATCH /v1/admin/commandes/:id/epingle.
func (h *AdminOrderHandler) TogglePin(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	pinned, err := h.Orders.TogglePin(ctx, id)
	if err != nil {
		return respondError(c, err, "unable to update order")
	}
	return ok(c, http.StatusOK, echo.Map{"id": id, "epingle": pinned})
}

// Export handles GET /v1/admin/commandes/export.xlsx.  It takes the same
// filters as List and walks every page.
func (h *AdminOrderHandler) Export(c echo.Context) error {
	p, err := history.ParseParams(c.QueryParams())
	if err != nil {
		return respondError(c, err, "invalid request")
	}
	p.Page, p.PageSize = 1, history.MaxPageSize

	ctx := c.Request().Context()
	var all []history.OrderView
	for p.Page <= exportMaxPages {
		page, err := h.Svc.ListAllOrders(ctx, p)
		if err != nil {
			return respondError(c, err, "unable to export orders")
		}
		all = append(all, page.Data...)
		if p.Page >= page.TotalPages {
			break
		}
		p.Page++
	}

	var buf bytes.Buffer
	if err := export.WriteOrders(&buf, all); err != nil {
		return respondError(c, err, "unable to export orders")
	}
	name := fmt.Sprintf("commandes-%s.xlsx", h.now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// UpdateEventStatus handles PATCH /v1/admin/evenements/:id/statut.
func (h *AdminOrderHandler) UpdateEventStatus(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid event id")
	}
	var req eventStatusReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if !status.EventStatus.IsCanonical(req.Status) {
		return fail(c, http.StatusBadRequest, "statutEvenement is invalid")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := h.Events.UpdateStatus(ctx, id, req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "event not found")
	}
	if err != nil {
		return respondError(c, err, "unable to update event")
	}
	publish(c, h.Pub, queue.NewEnvelope(queue.EventEventStatusChanged, notify.NewMessage(
		clientID, notify.CategoryEventUpdates, "Mise à jour de votre événement",
		fmt.Sprintf("Votre demande d'événement n°%d est maintenant : %s.", id, req.Status),
		map[string]string{"event_id": fmt.Sprint(id)},
	)))
	return ok(c, http.StatusOK, echo.Map{"id": id})
}
