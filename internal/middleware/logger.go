package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the context key of the request id.
const ContextRequestID = "request_id"

// RequestLogger assigns a request id (honouring an incoming X-Request-ID)
// and logs one line per request once it completes.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if _, err := uuid.Parse(rid); err != nil {
				rid = uuid.NewString()
			}
			c.Set(ContextRequestID, rid)
			c.Response().Header().Set(HeaderRequestID, rid)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			fields := log.Fields{
				"request_id": rid,
				"method":     c.Request().Method,
				"route":      c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"user_id":    currentUserID(c),
			}
			entry := log.WithFields(fields)
			switch s := c.Response().Status; {
			case s >= 500:
				entry.Error("request")
			case s >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		}
	}
}
