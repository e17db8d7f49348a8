package history

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/model"
	"github.com/chanthanathaicook/backend/internal/repository"
	"github.com/chanthanathaicook/backend/internal/status"
)

// Line item types.
const (
	LineDish  = "plat"
	LineExtra = "extra"
)

// OrderView is the flattened order returned to clients.  Dates are RFC 3339
// strings or null.
type OrderView struct {
	ID            uint64          `json:"idcommande"`
	ClientID      *uint64         `json:"client_r_id"`
	PlacedAt      *string         `json:"date_de_prise_de_commande"`
	PickupAt      *string         `json:"date_et_heure_de_retrait_souhaitees"`
	Status        *string         `json:"statut_commande"`
	PaymentStatus *string         `json:"statut_paiement"`
	DeliveryType  *string         `json:"type_livraison"`
	Notes         *string         `json:"demande_special_pour_la_commande"`
	Pinned        bool            `json:"epingle"`
	EventName     *string         `json:"nom_evenement"`
	Total         decimal.Decimal `json:"prix_total"`
	IsPaid        bool            `json:"isPaid"`
	PaymentMeans  string          `json:"paymentMeans"`
	Items         []LineItemView  `json:"details"`
	Client        *ClientView     `json:"client"`
}

// LineItemView is one row of an order.  Dish or Extra is null when the
// catalog entry no longer exists; the snapshot fields stay populated.
type LineItemView struct {
	ID        uint64          `json:"iddetails"`
	Type      string          `json:"type"`
	Quantity  int             `json:"quantite_plat_commande"`
	UnitPrice decimal.Decimal `json:"prix_unitaire"`
	LineTotal decimal.Decimal `json:"total_ligne"`
	DishName  *string         `json:"nom_plat"`
	Dish      *DishView       `json:"plat"`
	Extra     *ExtraView      `json:"extra"`
}

// DishView is the current catalog entry of a dish line.
type DishView struct {
	ID          uint64          `json:"idplats"`
	Name        string          `json:"plat"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"prix"`
	Vegetarian  bool            `json:"est_vegetarien"`
	SpiceLevel  int             `json:"niveau_epice"`
	Category    *string         `json:"categorie"`
	Photo       *string         `json:"photo_du_plat"`
}

// ExtraView is the current catalog entry of an extra line.
type ExtraView struct {
	ID          uint64          `json:"idextra"`
	Name        string          `json:"nom_extra"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"prix"`
	Photo       *string         `json:"photo_url"`
}

// ClientView is the contact block shown with an order.
type ClientView struct {
	ID        uint64  `json:"idclient"`
	LastName  *string `json:"nom"`
	FirstName *string `json:"prenom"`
	Email     *string `json:"email"`
	Phone     *string `json:"numero_de_telephone"`
}

// MapOrder turns a stored order into its view.  It is pure: mapping the
// same record twice yields equal views.
func MapOrder(o repository.OrderRecord) OrderView {
	payment := status.PaymentStatus.Normalize(o.PaymentStatus)
	v := OrderView{
		ID:            o.ID,
		ClientID:      copyUint(o.ClientID),
		PlacedAt:      formatTime(o.PlacedAt),
		PickupAt:      formatTime(o.PickupAt),
		Status:        status.OrderStatus.Normalize(o.Status),
		PaymentStatus: payment,
		DeliveryType:  status.DeliveryType.Normalize(o.DeliveryType),
		Notes:         copyStr(o.Notes),
		Pinned:        o.Pinned,
		EventName:     copyStr(o.EventName),
		Total:         decimal.Zero,
		IsPaid:        status.IsPaid(payment),
		PaymentMeans:  status.PaymentMeans(payment),
		Items:         make([]LineItemView, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		line := mapLineItem(it)
		v.Total = v.Total.Add(line.LineTotal)
		v.Items = append(v.Items, line)
	}
	if o.Client != nil {
		v.Client = mapClient(o.Client)
	}
	return v
}

func mapLineItem(it repository.LineItemRecord) LineItemView {
	v := LineItemView{
		ID:        it.ID,
		Type:      lineType(it),
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
		LineTotal: it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		DishName:  copyStr(it.DishName),
	}
	if it.Dish != nil && v.Type == LineDish {
		d := it.Dish
		v.Dish = &DishView{
			ID:          d.ID,
			Name:        d.Name,
			Description: copyStr(d.Description),
			Price:       d.Price,
			Vegetarian:  d.Vegetarian,
			SpiceLevel:  d.SpiceLevel,
			Category:    copyStr(d.Category),
			Photo:       copyStr(d.Photo),
		}
	}
	if it.Extra != nil && v.Type == LineExtra {
		e := it.Extra
		v.Extra = &ExtraView{
			ID:          e.ID,
			Name:        e.Name,
			Description: copyStr(e.Description),
			Price:       e.Price,
			Photo:       copyStr(e.Photo),
		}
	}
	return v
}

// lineType trusts the stored type and otherwise infers it from the
// reference that is set.  Legacy rows without either are dish lines.
func lineType(it repository.LineItemRecord) string {
	if it.Type != nil {
		switch *it.Type {
		case LineDish, LineExtra:
			return *it.Type
		}
	}
	if it.ExtraID != nil && it.DishID == nil {
		return LineExtra
	}
	return LineDish
}

func mapClient(c *model.Client) *ClientView {
	return &ClientView{
		ID:        c.ID,
		LastName:  copyStr(c.LastName),
		FirstName: copyStr(c.FirstName),
		Email:     copyStr(c.Email),
		Phone:     copyStr(c.Phone),
	}
}

// EventView is a catering request with its normalized status.
type EventView struct {
	ID                uint64           `json:"idevenements"`
	Name              string           `json:"nom_evenement"`
	Type              *string          `json:"type_d_evenement"`
	Date              *string          `json:"date_evenement"`
	Guests            int              `json:"nombre_de_personnes"`
	Budget            *decimal.Decimal `json:"budget_client"`
	SpecialRequests   *string          `json:"demandes_speciales_evenement"`
	PreselectedDishes []uint64         `json:"plats_preselectionnes"`
	Status            *string          `json:"statut_evenement"`
	CreatedAt         *string          `json:"created_at"`
	UpdatedAt         *string          `json:"updated_at"`
}

// MapEvent turns a stored event into its view.
func MapEvent(e model.Event) EventView {
	v := EventView{
		ID:                e.ID,
		Name:              e.Name,
		Type:              copyStr(e.Type),
		Date:              formatTime(&e.Date),
		Guests:            e.Guests,
		SpecialRequests:   copyStr(e.SpecialRequests),
		PreselectedDishes: append([]uint64{}, e.PreselectedDishes...),
		Status:            status.EventStatus.Normalize(e.Status),
		CreatedAt:         formatTime(&e.CreatedAt),
		UpdatedAt:         formatTime(&e.UpdatedAt),
	}
	if e.Budget.Valid {
		b := e.Budget.Decimal
		v.Budget = &b
	}
	return v
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyUint(u *uint64) *uint64 {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
