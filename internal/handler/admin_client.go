package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/notify"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
)

type AdminClientHandler struct {
	Clients *repository.ClientRepo
	Pub     EventPublisher
}

func NewAdminClientHandler(clients *repository.ClientRepo, pub EventPublisher) *AdminClientHandler {
	return &AdminClientHandler{Clients: clients, Pub: pub}
}

type adminMessageReq struct {
	ClientID uint64            `json:"clientId" validate:"required"`
	Title    string            `json:"title" validate:"required,max=120"`
	Body     string            `json:"body" validate:"required,max=1000"`
	Data     map[string]string `json:"data"`
}

// List handles GET /v1/admin/clients?search=&page=&pageSize=
func (h *AdminClientHandler) List(c echo.Context) error {
	p, err := history.ParseParams(c.QueryParams())
	if err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clients, total, err := h.Clients.List(ctx, p.Search, p.Page, p.PageSize)
	if err != nil {
		return respondError(c, err, "unable to load clients")
	}
	return ok(c, http.StatusOK, echo.Map{
		"data":       clients,
		"total":      total,
		"totalPages": history.TotalPages(total, p.PageSize),
		"page":       p.Page,
		"pageSize":   p.PageSize,
	})
}

// Get handles GET /v1/admin/clients/:id.
func (h *AdminClientHandler) Get(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid client id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "unable to load client")
	}
	return ok(c, http.StatusOK, echo.Map{"data": client})
}

// SendMessage handles POST /v1/admin/notifications.  Delivery is
// asynchronous; the response only confirms the message was queued.
func (h *AdminClientHandler) SendMessage(c echo.Context) error {
	var req adminMessageReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if _, err := h.Clients.GetByID(ctx, req.ClientID); err != nil {
		return respondError(c, err, "unable to send message")
	}
	msg := notify.NewMessage(req.ClientID, notify.CategoryAdminMessages, req.Title, req.Body, req.Data)
	if err := h.Pub.Publish(ctx, queue.NewEnvelope(queue.EventAdminMessage, msg)); err != nil {
		logger(c).WithError(err).Error("queue admin message")
		return fail(c, http.StatusServiceUnavailable, "notification queue unavailable")
	}
	return ok(c, http.StatusAccepted, echo.Map{"id": msg.ID})
}
