package router

import (
	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/handler"
	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/model"
)

// ClientHandlers groups the handlers behind the CLIENT role.
type ClientHandlers struct {
	History       *handler.HistoryHandler
	Checkout      *handler.CheckoutHandler
	Events        *handler.EventHandler
	Notifications *handler.NotificationHandler
	Profile       *handler.ClientHandler
}

// RegisterClient registers client-scoped endpoints under /v1.  All routes
// require a valid JWT and the CLIENT role; ownership is enforced by the
// handlers through the caller's client profile.
func RegisterClient(e *echo.Echo, h ClientHandlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient),
	)

	// ---- History ----
	g.GET("/historique/commandes", h.History.ListOrders)
	g.GET("/historique/commandes/:id", h.History.GetOrder)
	g.GET("/historique/evenements", h.History.ListEvents)

	// ---- Ordering ----
	g.POST("/commandes", h.Checkout.Create, limiter)
	g.POST("/evenements", h.Events.Create, limiter)

	// ---- Profile ----
	g.GET("/profil", h.Profile.Get)
	g.PATCH("/profil", h.Profile.Update)

	// ---- Notifications ----
	g.POST("/notifications/tokens", h.Notifications.RegisterToken)
	g.DELETE("/notifications/tokens", h.Notifications.RevokeToken)
	g.GET("/notifications/preferences", h.Notifications.GetPreferences)
	g.PATCH("/notifications/preferences", h.Notifications.UpdatePreferences)
}
