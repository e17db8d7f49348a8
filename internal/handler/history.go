package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/history"
)

// HistoryHandler serves the caller's order and event history.
type HistoryHandler struct {
	Svc *history.Service
}

func NewHistoryHandler(svc *history.Service) *HistoryHandler {
	return &HistoryHandler{Svc: svc}
}

// ListOrders handles GET /v1/historique/commandes.
func (h *HistoryHandler) ListOrders(c echo.Context) error {
	p, err := history.ParseParams(c.QueryParams())
	if err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	page, err := h.Svc.ListOrders(ctx, identity(c), p)
	if err != nil {
		return respondError(c, err, "unable to load order history")
	}
	return c.JSON(http.StatusOK, pageBody(page))
}

// GetOrder handles GET /v1/historique/commandes/:id.
func (h *HistoryHandler) GetOrder(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	order, err := h.Svc.GetOrder(ctx, identity(c), id)
	if err != nil {
		return respondError(c, err, "unable to load order")
	}
	return ok(c, http.StatusOK, echo.Map{"data": order})
}

// ListEvents handles GET /v1/historique/evenements.
func (h *HistoryHandler) ListEvents(c echo.Context) error {
	p, err := history.ParseParams(c.QueryParams())
	if err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	page, err := h.Svc.ListEvents(ctx, identity(c), p)
	if err != nil {
		return respondError(c, err, "unable to load event history")
	}
	return c.JSON(http.StatusOK, pageBody(page))
}

func pageBody[T any](p history.Page[T]) echo.Map {
	return echo.Map{
		"success":        true,
		"data":           p.Data,
		"total":          p.Total,
		"totalPages":     p.TotalPages,
		"page":           p.Page,
		"pageSize":       p.PageSize,
		"amountFiltered": p.AmountFiltered,
	}
}
