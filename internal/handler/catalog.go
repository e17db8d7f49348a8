package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/model"
	"github.com/chanthanathaicook/backend/internal/repository"
)

// CatalogHandler serves the public menu.
type CatalogHandler struct {
	Dishes *repository.DishRepo
	Extras *repository.ExtraRepo
}

func NewCatalogHandler(dishes *repository.DishRepo, extras *repository.ExtraRepo) *CatalogHandler {
	return &CatalogHandler{Dishes: dishes, Extras: extras}
}

// ListDishes handles GET /v1/plats?jour=&categorie=&vegetarien=
func (h *CatalogHandler) ListDishes(c echo.Context) error {
	f := repository.DishFilter{
		Day:      c.QueryParam("jour"),
		Category: c.QueryParam("categorie"),
	}
	if f.Day != "" {
		if _, known := model.DayColumn(f.Day); !known {
			return fail(c, http.StatusBadRequest, "jour must be a weekday name (lundi..dimanche)")
		}
	}
	if raw := c.QueryParam("vegetarien"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "vegetarien must be true or false")
		}
		f.Vegetarian = &v
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	dishes, err := h.Dishes.List(ctx, f)
	if err != nil {
		return respondError(c, err, "unable to load dishes")
	}
	return ok(c, http.StatusOK, echo.Map{"data": dishes})
}

// ListExtras handles GET /v1/extras.  Only active extras are listed.
func (h *CatalogHandler) ListExtras(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	extras, err := h.Extras.List(ctx, true)
	if err != nil {
		return respondError(c, err, "unable to load extras")
	}
	return ok(c, http.StatusOK, echo.Map{"data": extras})
}
