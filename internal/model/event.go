package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a catering request (evenements_db).  Status is stored raw and
// normalized on read like order statuses.
type Event struct {
	ID                uint64              `json:"idevenements"`
	ClientID          uint64              `json:"contact_client_r_id"`
	Name              string              `json:"nom_evenement"`
	Type              *string             `json:"type_d_evenement"`
	Date              time.Time           `json:"date_evenement"`
	Guests            int                 `json:"nombre_de_personnes"`
	Budget            decimal.NullDecimal `json:"budget_client"`
	SpecialRequests   *string             `json:"demandes_speciales_evenement"`
	PreselectedDishes []uint64            `json:"plats_preselectionnes"`
	Status            *string             `json:"statut_evenement"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}
