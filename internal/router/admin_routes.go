package router

import (
	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/handler"
	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/model"
)

// AdminHandlers groups the back-office handlers.
type AdminHandlers struct {
	Orders  *handler.AdminOrderHandler
	Catalog *handler.AdminCatalogHandler
	Clients *handler.AdminClientHandler
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Orders ----
	g.GET("/commandes", h.Orders.List)
	g.GET("/commandes/export.xlsx", h.Orders.Export) // static segment wins over :id
	g.GET("/commandes/:id", h.Orders.Get)
	g.PATCH("/commandes/:id/statut", h.Orders.UpdateStatus)
	g.PATCH("/commandes/:id/epingle", h.Orders.TogglePin)

	// ---- Events ----
	g.PATCH("/evenements/:id/statut", h.Orders.UpdateEventStatus)

	// ---- Catalog ----
	g.POST("/plats", h.Catalog.CreateDish)
	g.PUT("/plats/:id", h.Catalog.UpdateDish)
	g.DELETE("/plats/:id", h.Catalog.DeleteDish)
	g.PATCH("/plats/:id/rupture", h.Catalog.SetSoldOut)
	g.POST("/extras", h.Catalog.CreateExtra)
	g.PUT("/extras/:id", h.Catalog.UpdateExtra)
	g.DELETE("/extras/:id", h.Catalog.DeleteExtra)

	// ---- Clients ----
	g.GET("/clients", h.Clients.List)
	g.GET("/clients/:id", h.Clients.Get)
	g.POST("/notifications", h.Clients.SendMessage)
}
