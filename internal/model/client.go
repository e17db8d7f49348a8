package model

import "time"

// Client is a customer profile (client_db) linked to one auth identity.
type Client struct {
	ID         uint64    `json:"idclient"`
	AuthUserID uint64    `json:"auth_user_id"`
	LastName   *string   `json:"nom"`
	FirstName  *string   `json:"prenom"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"numero_de_telephone"`
	Street     *string   `json:"adresse_numero_et_rue"`
	PostalCode *string   `json:"code_postal"`
	City       *string   `json:"ville"`
	Preference *string   `json:"preference_client"`
	Photo      *string   `json:"photo_client"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
