package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/notify"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/status"
)

// EventHandler accepts catering requests from clients.
type EventHandler struct {
	Events  *repository.EventRepo
	Clients ClientResolver
	Pub     EventPublisher
	now     func() time.Time
}

func NewEventHandler(events *repository.EventRepo, clients ClientResolver, pub EventPublisher) *EventHandler {
	return &EventHandler{Events: events, Clients: clients, Pub: pub, now: time.Now}
}

type createEventReq struct {
	Name              string           `json:"nom_evenement" validate:"required,max=255"`
	Type              *string          `json:"type_d_evenement" validate:"omitempty,max=100"`
	Date              time.Time        `json:"date_evenement" validate:"required"`
	Guests            int              `json:"nombre_de_personnes" validate:"min=1"`
	Budget            *decimal.Decimal `json:"budget_client"`
	SpecialRequests   *string          `json:"demandes_speciales_evenement" validate:"omitempty,max=2000"`
	PreselectedDishes []uint64         `json:"plats_preselectionnes" validate:"omitempty,dive,gt=0"`
}

// Create handles POST /v1/evenements.  The request starts as
// "Demande initiale".
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if !req.Date.After(h.now()) {
		return fail(c, http.StatusBadRequest, "date_evenement must be in the future")
	}
	if req.Budget != nil && req.Budget.IsNegative() {
		return fail(c, http.StatusBadRequest, "budget_client must not be negative")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "unable to create event")
	}
	id, err := h.Events.Create(ctx, repository.NewEvent{
		ClientID:          clientID,
		Name:              strings.TrimSpace(req.Name),
		Type:              req.Type,
		Date:              req.Date,
		Guests:            req.Guests,
		Budget:            req.Budget,
		SpecialRequests:   req.SpecialRequests,
		PreselectedDishes: req.PreselectedDishes,
		Status:            status.EventRequested,
	})
	if err != nil {
		return respondError(c, err, "unable to create event")
	}
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "unable to create event")
	}

	publish(c, h.Pub, queue.NewEnvelope(queue.EventEventCreated, notify.NewMessage(
		clientID, notify.CategoryEventUpdates,
		"Demande d'événement reçue",
		fmt.Sprintf("Votre demande « %s » a bien été enregistrée.", ev.Name),
		map[string]string{"event_id": fmt.Sprint(id)},
	)))
	return ok(c, http.StatusCreated, echo.Map{"data": history.MapEvent(*ev)})
}
