package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/notify"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/status"
)

// CheckoutHandler turns a cart into an order.
type CheckoutHandler struct {
	DB      *sql.DB
	Orders  *repository.OrderRepo
	Dishes  *repository.DishRepo
	Extras  *repository.ExtraRepo
	Clients ClientResolver
	Pub     EventPublisher
	now     func() time.Time
}

func NewCheckoutHandler(db *sql.DB, orders *repository.OrderRepo, dishes *repository.DishRepo, extras *repository.ExtraRepo, clients ClientResolver, pub EventPublisher) *CheckoutHandler {
	return &CheckoutHandler{DB: db, Orders: orders, Dishes: dishes, Extras: extras, Clients: clients, Pub: pub, now: time.Now}
}

type cartItem struct {
	Type     string `json:"type" validate:"required,oneof=plat extra"`
	ID       uint64 `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1,max=99"`
}

type checkoutReq struct {
	Items        []cartItem `json:"items" validate:"required,min=1,max=50,dive"`
	PickupAt     time.Time  `json:"date_et_heure_de_retrait_souhaitees" validate:"required"`
	DeliveryType string     `json:"type_livraison" validate:"required"`
	Notes        *string    `json:"demande_special_pour_la_commande" validate:"omitempty,max=1000"`
	EventName    *string    `json:"nom_evenement" validate:"omitempty,max=255"`
}

// Create handles POST /v1/commandes.  Prices and names are read under
// row locks and copied onto the line items.
func (h *CheckoutHandler) Create(c echo.Context) error {
	var req checkoutReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	now := h.now()
	if !req.PickupAt.After(now) {
		return fail(c, http.StatusBadRequest, "date_et_heure_de_retrait_souhaitees must be in the future")
	}
	delivery := status.DeliveryType.Normalize(&req.DeliveryType)
	if delivery == nil {
		return fail(c, http.StatusBadRequest, "type_livraison is invalid")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "checkout failed")
	}

	var dishIDs, extraIDs []uint64
	for _, it := range req.Items {
		if it.Type == history.LineDish {
			dishIDs = append(dishIDs, it.ID)
		} else {
			extraIDs = append(extraIDs, it.ID)
		}
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err, "checkout failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	dishes, err := h.Dishes.LockForOrderTx(ctx, tx, dishIDs)
	if err != nil {
		return respondError(c, err, "checkout failed")
	}
	extras, err := h.Extras.LockForOrderTx(ctx, tx, extraIDs)
	if err != nil {
		return respondError(c, err, "checkout failed")
	}

	lines := make([]repository.NewLineItem, 0, len(req.Items))
	for _, it := range req.Items {
		id := it.ID
		if it.Type == history.LineDish {
			d, found := dishes[id]
			if !found {
				return respondError(c, fmt.Errorf("%w: dish %d does not exist", repository.ErrConflict, id), "")
			}
			if d.IsSoldOutAt(now) {
				return respondError(c, fmt.Errorf("%w: %s is sold out", repository.ErrConflict, d.Name), "")
			}
			if !d.Availability.On(req.PickupAt.Weekday()) {
				return respondError(c, fmt.Errorf("%w: %s is not served on that day", repository.ErrConflict, d.Name), "")
			}
			lines = append(lines, repository.NewLineItem{
				Type: history.LineDish, DishID: &id, Quantity: it.Quantity, UnitPrice: d.Price, Name: d.Name,
			})
			continue
		}
		e, found := extras[id]
		if !found || !e.Active {
			return respondError(c, fmt.Errorf("%w: extra %d is not available", repository.ErrConflict, id), "")
		}
		lines = append(lines, repository.NewLineItem{
			Type: history.LineExtra, ExtraID: &id, Quantity: it.Quantity, UnitPrice: e.Price, Name: e.Name,
		})
	}

	order := repository.NewOrder{
		ClientID:      clientID,
		PickupAt:      req.PickupAt,
		Status:        status.OrderPending,
		PaymentStatus: status.PaymentPendingOnSite,
		DeliveryType:  *delivery,
		Notes:         req.Notes,
		EventName:     req.EventName,
	}
	orderID, err := h.Orders.CreateTx(ctx, tx, order)
	if err != nil {
		return respondError(c, err, "checkout failed")
	}
	if err := h.Orders.CreateLinesBulkTx(ctx, tx, orderID, lines); err != nil {
		return respondError(c, err, "checkout failed")
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err, "checkout failed")
	}
	committed = true

	// The order exists from here on; a failed re-read must not look like a
	// failed checkout.
	rec, err := h.Orders.GetForClient(ctx, orderID, clientID)
	if err != nil {
		logger(c).WithError(err).WithField("order_id", orderID).Warn("re-read of created order failed")
		rec = createdRecord(orderID, order, lines, now)
	}
	view := history.MapOrder(*rec)

	publish(c, h.Pub, queue.NewEnvelope(queue.EventOrderCreated, notify.NewMessage(
		clientID, notify.CategoryOrderUpdates,
		"Commande reçue",
		fmt.Sprintf("Votre commande n°%d (%s €) est en attente de confirmation.", orderID, view.Total.StringFixed(2)),
		map[string]string{"order_id": fmt.Sprint(orderID)},
	)))
	return ok(c, http.StatusCreated, echo.Map{"data": view})
}

// createdRecord rebuilds an order from the values just inserted.
func createdRecord(id uint64, o repository.NewOrder, lines []repository.NewLineItem, placedAt time.Time) *repository.OrderRecord {
	clientID := o.ClientID
	placed := placedAt.UTC()
	pickup := o.PickupAt.UTC()
	rec := &repository.OrderRecord{
		ID:            id,
		ClientID:      &clientID,
		PlacedAt:      &placed,
		PickupAt:      &pickup,
		Status:        &o.Status,
		PaymentStatus: &o.PaymentStatus,
		DeliveryType:  &o.DeliveryType,
		Notes:         o.Notes,
		EventName:     o.EventName,
		Items:         make([]repository.LineItemRecord, 0, len(lines)),
	}
	for _, l := range lines {
		typ, name := l.Type, l.Name
		rec.Items = append(rec.Items, repository.LineItemRecord{
			OrderID:   id,
			Type:      &typ,
			DishID:    l.DishID,
			ExtraID:   l.ExtraID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			DishName:  &name,
		})
	}
	return rec
}
