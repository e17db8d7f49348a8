package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"  // Echo web framework
	"github.com/redis/go-redis/v9" // readiness probe

	"github.com/chanthanathaicook/backend/internal/handler"    // request handlers
	"github.com/chanthanathaicook/backend/internal/middleware" // JWT and role middlewares
	"github.com/chanthanathaicook/backend/internal/model"
)

// RegisterRoutes registers the probes.  /healthz only proves the process
// answers; /readyz pings MySQL and Redis.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db, rdb))
}

// RegisterAuth registers the session endpoints under /v1/auth, rate
// limited by limiter, and GET /v1/me behind JWT auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)   // takes the refresh token in the body, no JWT

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleClient, model.RoleAdmin))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated menu.  cache wraps both
// routes; admin catalog writes invalidate it.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/plats", p.ListDishes, cache)
	e.GET("/v1/extras", p.ListExtras, cache)
}
