package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Extra is a catalog add-on (extras_db).
type Extra struct {
	ID          uint64          `json:"idextra"`
	Name        string          `json:"nom_extra"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"prix"`
	Photo       *string         `json:"photo_url"`
	Active      bool            `json:"actif"`
	CreatedAt   time.Time       `json:"created_at"`
}
