package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/model"
)

// NotificationStore is the persistence the notification endpoints need.
type NotificationStore interface {
	UpsertToken(ctx context.Context, clientID uint64, token, deviceType string) error
	RevokeToken(ctx context.Context, clientID uint64, token string) error
	GetOrCreatePreferences(ctx context.Context, clientID uint64) (*model.NotificationPreferences, error)
	SavePreferences(ctx context.Context, p model.NotificationPreferences) error
}

// NotificationHandler manages push tokens and notification preferences.
type NotificationHandler struct {
	Store   NotificationStore
	Clients ClientResolver
}

func NewNotificationHandler(store NotificationStore, clients ClientResolver) *NotificationHandler {
	return &NotificationHandler{Store: store, Clients: clients}
}

type registerTokenReq struct {
	Token      string `json:"token" validate:"required,min=10,max=512"`
	DeviceType string `json:"deviceType" validate:"required,oneof=web ios android"`
}

type revokeTokenReq struct {
	Token string `json:"token" validate:"required"`
}

// RegisterToken handles POST /v1/notifications/tokens.
func (h *NotificationHandler) RegisterToken(c echo.Context) error {
	var req registerTokenReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "unable to register token")
	}
	if err := h.Store.UpsertToken(ctx, clientID, req.Token, req.DeviceType); err != nil {
		return respondError(c, err, "unable to register token")
	}
	return ok(c, http.StatusOK, nil)
}

// RevokeToken handles DELETE /v1/notifications/tokens.  Unknown tokens are
// not an error.
func (h *NotificationHandler) RevokeToken(c echo.Context) error {
	var req revokeTokenReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "unable to revoke token")
	}
	if err := h.Store.RevokeToken(ctx, clientID, req.Token); err != nil {
		return respondError(c, err, "unable to revoke token")
	}
	return ok(c, http.StatusOK, nil)
}

// GetPreferences handles GET /v1/notifications/preferences.
func (h *NotificationHandler) GetPreferences(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "unable to load preferences")
	}
	prefs, err := h.Store.GetOrCreatePreferences(ctx, clientID)
	if err != nil {
		return respondError(c, err, "unable to load preferences")
	}
	return ok(c, http.StatusOK, echo.Map{"data": prefs})
}

// UpdatePreferences handles PATCH /v1/notifications/preferences.
func (h *NotificationHandler) UpdatePreferences(c echo.Context) error {
	var patch model.NotificationPreferencesPatch
	if err := bind(c, &patch); err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "unable to update preferences")
	}
	current, err := h.Store.GetOrCreatePreferences(ctx, clientID)
	if err != nil {
		return respondError(c, err, "unable to update preferences")
	}
	next := patch.Apply(*current)
	if err := h.Store.SavePreferences(ctx, next); err != nil {
		return respondError(c, err, "unable to update preferences")
	}
	return ok(c, http.StatusOK, echo.Map{"data": next})
}
