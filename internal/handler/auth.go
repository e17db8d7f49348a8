package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/config"
	"github.com/chanthanathaicook/backend/internal/middleware"
	"github.com/chanthanathaicook/backend/internal/model"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	DB      *sql.DB
	Users   *repository.UserRepo
	Tokens  *repository.TokenRepo
	Clients *repository.ClientRepo
}

func NewAuthHandler(cfg config.Config, db *sql.DB, u *repository.UserRepo, t *repository.TokenRepo, cl *repository.ClientRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, DB: db, Users: u, Tokens: t, Clients: cl}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64  `json:"id"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	ClientID *uint64 `json:"client_id,omitempty"`
}

// issue creates an access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u userPart) (echo.Map, error) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return echo.Map{
		"user":    u,
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
		"refresh": tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a CLIENT identity and its client profile in one
// transaction, then returns tokens.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := requestCtx(c)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return respondError(c, err, "registration failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	uid, err := h.Users.CreateTx(ctx, tx, req.Email, req.Password, model.RoleClient, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err, "registration failed")
	}
	clientID, err := h.Clients.CreateTx(ctx, tx, uid, req.Email)
	if err != nil {
		return respondError(c, err, "registration failed")
	}
	if err := tx.Commit(); err != nil {
		return respondError(c, err, "registration failed")
	}
	committed = true

	body, err := h.issue(c, userPart{ID: uid, Email: req.Email, Role: model.RoleClient, ClientID: &clientID})
	if err != nil {
		return respondError(c, err, "issue tokens failed")
	}
	return ok(c, http.StatusCreated, body)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return respondError(c, err, "login failed")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	body, err := h.issue(c, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return respondError(c, err, "issue tokens failed")
	}
	return ok(c, http.StatusOK, body)
}

// Refresh validates a refresh token by hash, revokes it and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := requestCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return respondError(c, err, "refresh failed")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !u.IsActive) {
		return fail(c, http.StatusUnauthorized, "invalid refresh")
	}
	if err != nil {
		return respondError(c, err, "refresh failed")
	}
	body, err := h.issue(c, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return respondError(c, err, "issue tokens failed")
	}
	return ok(c, http.StatusOK, body)
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the bearer when only an access token is present.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid, _ = strconv.ParseUint(claims.Subject, 10, 64)
		}
	}
	var req refreshReq
	_ = c.Bind(&req) // body is optional
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestCtx(c)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return respondError(c, err, "logout failed")
		}
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return respondError(c, err, "logout failed")
		}
	default:
		return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
	}
	return ok(c, http.StatusOK, nil)
}

// Me echoes the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	return ok(c, http.StatusOK, echo.Map{
		"user_id": c.Get(middleware.ContextUserID),
		"role":    c.Get(middleware.ContextRole),
	})
}
