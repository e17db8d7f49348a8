package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dish is a row of plats_db.  Availability is per weekday; sold out is a
// temporal state, not a deletion.
type Dish struct {
	ID            uint64          `json:"idplats"`
	Name          string          `json:"plat"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"prix"`
	Availability  Weekdays        `json:"disponibilite"`
	SoldOut       bool            `json:"est_en_rupture"`
	SoldOutReason *string         `json:"raison_rupture"`
	SoldOutFrom   *time.Time      `json:"rupture_debut"`
	SoldOutUntil  *time.Time      `json:"rupture_fin"`
	Vegetarian    bool            `json:"est_vegetarien"`
	SpiceLevel    int             `json:"niveau_epice"`
	Category      *string         `json:"categorie"`
	Photo         *string         `json:"photo_du_plat"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsSoldOutAt reports whether the sold-out flag applies at t.  A missing
// bound is open-ended.
func (d Dish) IsSoldOutAt(t time.Time) bool {
	if !d.SoldOut {
		return false
	}
	if d.SoldOutFrom != nil && t.Before(*d.SoldOutFrom) {
		return false
	}
	if d.SoldOutUntil != nil && t.After(*d.SoldOutUntil) {
		return false
	}
	return true
}

// Weekdays holds the lundi_dispo..dimanche_dispo columns.
type Weekdays struct {
	Monday    bool `json:"lundi"`
	Tuesday   bool `json:"mardi"`
	Wednesday bool `json:"mercredi"`
	Thursday  bool `json:"jeudi"`
	Friday    bool `json:"vendredi"`
	Saturday  bool `json:"samedi"`
	Sunday    bool `json:"dimanche"`
}

// On reports availability on the given weekday.
func (w Weekdays) On(d time.Weekday) bool {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	}
	return false
}

var dayColumns = map[string]string{
	"lundi":    "lundi_dispo",
	"mardi":    "mardi_dispo",
	"mercredi": "mercredi_dispo",
	"jeudi":    "jeudi_dispo",
	"vendredi": "vendredi_dispo",
	"samedi":   "samedi_dispo",
	"dimanche": "dimanche_dispo",
}

// DayColumn maps a French day name to its availability column.
func DayColumn(day string) (string, bool) {
	col, ok := dayColumns[strings.ToLower(strings.TrimSpace(day))]
	return col, ok
}
