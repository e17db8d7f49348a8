package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is a liveness check for load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready reports whether MySQL (and Redis when configured) answer a ping.
func Ready(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger(c).WithError(err).Warn("database not ready")
			return fail(c, http.StatusServiceUnavailable, "database unavailable")
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger(c).WithError(err).Warn("redis not ready")
				return fail(c, http.StatusServiceUnavailable, "cache unavailable")
			}
		}
		return ok(c, http.StatusOK, nil)
	}
}
