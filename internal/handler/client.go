package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chanthanathaicook/backend/internal/repository"
)

// ClientHandler serves the caller's own profile.
type ClientHandler struct {
	Clients *repository.ClientRepo
}

func NewClientHandler(clients *repository.ClientRepo) *ClientHandler {
	return &ClientHandler{Clients: clients}
}

type updateProfileReq struct {
	LastName   *string `json:"nom" validate:"omitempty,max=100"`
	FirstName  *string `json:"prenom" validate:"omitempty,max=100"`
	Phone      *string `json:"numero_de_telephone" validate:"omitempty,max=30"`
	Street     *string `json:"adresse_numero_et_rue" validate:"omitempty,max=255"`
	PostalCode *string `json:"code_postal" validate:"omitempty,max=10"`
	City       *string `json:"ville" validate:"omitempty,max=100"`
	Preference *string `json:"preference_client" validate:"omitempty,max=1000"`
	Photo      *string `json:"photo_client" validate:"omitempty,url"`
}

// Get handles GET /v1/profil.
func (h *ClientHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err, "")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	client, err := h.Clients.GetByAuthUser(ctx, uid)
	if err != nil {
		return respondError(c, err, "unable to load profile")
	}
	return ok(c, http.StatusOK, echo.Map{"data": client})
}

// Update handles PATCH /v1/profil.
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateProfileReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "invalid request")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	clientID, err := currentClient(ctx, c, h.Clients)
	if err != nil {
		return respondError(c, err, "unable to update profile")
	}
	patch := repository.ClientPatch{
		LastName:   req.LastName,
		FirstName:  req.FirstName,
		Phone:      req.Phone,
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		Preference: req.Preference,
		Photo:      req.Photo,
	}
	if err := h.Clients.Update(ctx, clientID, patch); err != nil {
		return respondError(c, err, "unable to update profile")
	}
	client, err := h.Clients.GetByID(ctx, clientID)
	if err != nil {
		return respondError(c, err, "unable to load profile")
	}
	return ok(c, http.StatusOK, echo.Map{"data": client})
}
