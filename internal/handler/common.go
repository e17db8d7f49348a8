package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
)

// dbTimeout bounds the database work of one request.
const dbTimeout = 5 * time.Second

// ClientResolver maps an auth identity to its client profile id.
type ClientResolver interface {
	IDByAuthUser(ctx context.Context, authUserID uint64) (uint64, error)
}

// EventPublisher hands notification envelopes to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, env queue.Envelope) error
}

// ok writes {"success": true, ...fields}.
func ok(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

// fail writes {"success": false, "error": msg}.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// respondError maps service and repository errors to the envelope.
// Anything unrecognised is logged and answered with the generic msg.
func respondError(c echo.Context, err error, msg string) error {
	var ve *history.ValidationError
	switch {
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, history.ErrAuthenticationRequired):
		return fail(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, history.ErrClientProfileNotFound), errors.Is(err, repository.ErrClientNotFound):
		return fail(c, http.StatusNotFound, "client profile not found")
	case errors.Is(err, history.ErrOrderNotFound), errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email already exists")
	}
	logger(c).WithError(err).Error(msg)
	return fail(c, http.StatusInternalServerError, msg)
}

// logger returns an entry tagged with the request id and route.
func logger(c echo.Context) *log.Entry {
	return log.WithFields(log.Fields{
		"request_id": c.Get(middleware.ContextRequestID),
		"route":      c.Path(),
	})
}

// getUserID extracts the authenticated user id placed by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get(middleware.ContextUserID)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, history.ErrAuthenticationRequired
}

func identity(c echo.Context) history.Identity {
	uid, _ := getUserID(c)
	return history.Identity{UserID: uid}
}

// currentClient resolves the caller's client id.
func currentClient(ctx context.Context, c echo.Context, clients ClientResolver) (uint64, error) {
	uid, err := getUserID(c)
	if err != nil || uid == 0 {
		return 0, history.ErrAuthenticationRequired
	}
	return clients.IDByAuthUser(ctx, uid)
}

// idParam parses a positive numeric path parameter.
func idParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// publish sends env and only logs a failure; notifications never fail the
// request that triggered them.
func publish(c echo.Context, pub EventPublisher, env queue.Envelope) {
	if pub == nil {
		return
	}
	if err := pub.Publish(c.Request().Context(), env); err != nil {
		logger(c).WithError(err).WithField("event", env.Type).Warn("publish failed")
	}
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}
