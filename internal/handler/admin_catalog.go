package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/model"
	"github.com/chanthanathaicook/backend/internal/repository"
)

// AdminCatalogHandler edits dishes and extras.  Every successful write
// drops the cached menu.
type AdminCatalogHandler struct {
	Dishes      *repository.DishRepo
	Extras      *repository.ExtraRepo
	Redis       *redis.Client
	CachePrefix string
}

func NewAdminCatalogHandler(dishes *repository.DishRepo, extras *repository.ExtraRepo, rdb *redis.Client, cachePrefix string) *AdminCatalogHandler {
	return &AdminCatalogHandler{Dishes: dishes, Extras: extras, Redis: rdb, CachePrefix: cachePrefix}
}

type dishReq struct {
	Name         string          `json:"plat" validate:"required,max=255"`
	Description  *string         `json:"description" validate:"omitempty,max=2000"`
	Price        decimal.Decimal `json:"prix"`
	Availability model.Weekdays  `json:"disponibilite"`
	Vegetarian   bool            `json:"est_vegetarien"`
	SpiceLevel   int             `json:"niveau_epice" validate:"min=0,max=5"`
	Category     *string         `json:"categorie" validate:"omitempty,max=100"`
	Photo        *string         `json:"photo_du_plat" validate:"omitempty,url"`
}

func (r dishReq) input() repository.DishInput {
	return repository.DishInput{
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Availability: r.Availability,
		Vegetarian:   r.Vegetarian,
		SpiceLevel:   r.SpiceLevel,
		Category:     r.Category,
		Photo:        r.Photo,
	}
}

type extraReq struct {
	Name        string          `json:"nom_extra" validate:"required,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Price       decimal.Decimal `json:"prix"`
	Photo       *string         `json:"photo_url" validate:"omitempty,url"`
	Active      *bool           `json:"actif"`
}

func (r extraReq) input() repository.ExtraInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return repository.ExtraInput{Name: r.Name, Description: r.Description, Price: r.Price, Photo: r.Photo, Active: active}
}

type soldOutReq struct {
	SoldOut bool       `json:"est_en_rupture"`
	Reason  *string    `json:"raison_rupture" validate:"omitempty,max=255"`
	From    *time.Time `json:"rupture_debut"`
	Until   *time.Time `json:"rupture_fin"`
}

func (h *AdminCatalogHandler) invalidate(c echo.Context) {
	if err := middleware.InvalidateCache(c.Request().Context(), h.Redis, h.CachePrefix); err != nil {
		logger(c).WithError(err).Warn("menu cache invalidation failed")
	}
}

// CreateDish handles POST /v1/admin/plats.
func (h *AdminCatalogHandler) CreateDish(c echo.Context) error {
	var req dishReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if req.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "prix must not be negative")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	id, err := h.Dishes.Create(ctx, req.input())
	if err != nil {
		return respondError(c, err, "unable to create dish")
	}
	h.invalidate(c)
	return ok(c, http.StatusCreated, echo.Map{"id": id})
}

// UpdateDish handles PUT /v1/admin/plats/:id.
func (h *AdminCatalogHandler) UpdateDish(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid dish id")
	}
	var req dishReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if req.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "prix must not be negative")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Dishes.Update(ctx, id, req.input()); err != nil {
		return respondError(c, err, "unable to update dish")
	}
	h.invalidate(c)
	return ok(c, http.StatusOK, echo.Map{"id": id})
}

// DeleteDish handles DELETE /v1/admin/plats/:id.
func (h *AdminCatalogHandler) DeleteDish(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid dish id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Dishes.Delete(ctx, id); err != nil {
		return respondError(c, err, "unable to delete dish")
	}
	h.invalidate(c)
	return ok(c, http.StatusOK, nil)
}

// SetSoldOut handles PATCH /v1/admin/plats/:id/rupture.
func (h *AdminCatalogHandler) SetSoldOut(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid dish id")
	}
	var req soldOutReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if req.From != nil && req.Until != nil && req.Until.Before(*req.From) {
		return fail(c, http.StatusBadRequest, "rupture_fin must not precede rupture_debut")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Dishes.SetSoldOut(ctx, id, req.SoldOut, req.Reason, req.From, req.Until); err != nil {
		return respondError(c, err, "unable to update dish")
	}
	h.invalidate(c)
	dish, err := h.Dishes.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "unable to load dish")
	}
	return ok(c, http.StatusOK, echo.Map{"data": dish})
}

// CreateExtra handles POST /v1/admin/extras.
func (h *AdminCatalogHandler) CreateExtra(c echo.Context) error {
	var req extraReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if req.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "prix must not be negative")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	id, err := h.Extras.Create(ctx, req.input())
	if err != nil {
		return respondError(c, err, "unable to create extra")
	}
	h.invalidate(c)
	return ok(c, http.StatusCreated, echo.Map{"id": id})
}

// UpdateExtra handles PUT /v1/admin/extras/:id.
func (h *AdminCatalogHandler) UpdateExtra(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid extra id")
	}
	var req extraReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	if req.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "prix must not be negative")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Extras.Update(ctx, id, req.input()); err != nil {
		return respondError(c, err, "unable to update extra")
	}
	h.invalidate(c)
	return ok(c, http.StatusOK, echo.Map{"id": id})
}

// DeleteExtra handles DELETE /v1/admin/extras/:id.
func (h *AdminCatalogHandler) DeleteExtra(c echo.Context) error {
	id, valid := idParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid extra id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Extras.Delete(ctx, id); err != nil {
		return respondError(c, err, "unable to delete extra")
	}
	h.invalidate(c)
	return ok(c, http.StatusOK, nil)
}
