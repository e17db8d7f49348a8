package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/model"
)

// OrderRepo reads and writes commande_db and details_commande_db.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderQuery defines filters and pagination for order listings.  Statuses
// holds raw stored spellings; they are matched exactly.  EndDate is
// inclusive.
type OrderQuery struct {
	Page      int
	PageSize  int
	Statuses  []string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

// OrderRecord is one commande_db row with its line items and client, as
// stored.  Status fields are raw and still need normalizing.
type OrderRecord struct {
	ID            uint64
	ClientID      *uint64
	PlacedAt      *time.Time
	PickupAt      *time.Time
	Status        *string
	PaymentStatus *string
	DeliveryType  *string
	Notes         *string
	Pinned        bool
	EventName     *string
	Items         []LineItemRecord
	Client        *model.Client
}

// LineItemRecord is one details_commande_db row.  UnitPrice and DishName
// are the snapshots captured at checkout; Dish and Extra are the current
// catalog rows and are nil when the referenced entry was deleted.
type LineItemRecord struct {
	ID        uint64
	OrderID   uint64
	Type      *string
	DishID    *uint64
	ExtraID   *uint64
	Quantity  int
	UnitPrice decimal.Decimal
	DishName  *string
	Dish      *CatalogDish
	Extra     *CatalogExtra
}

// CatalogDish is the subset of plats_db shown next to a line item.
type CatalogDish struct {
	ID          uint64
	Name        string
	Description *string
	Price       decimal.Decimal
	Vegetarian  bool
	SpiceLevel  int
	Category    *string
	Photo       *string
}

// CatalogExtra is the subset of extras_db shown next to a line item.
type CatalogExtra struct {
	ID          uint64
	Name        string
	Description *string
	Price       decimal.Decimal
	Photo       *string
	Active      bool
}

const orderColumns = `c.idcommande, c.client_r_id, c.date_de_prise_de_commande,
	c.date_et_heure_de_retrait_souhaitees, c.statut_commande, c.statut_paiement,
	c.type_livraison, c.demande_special_pour_la_commande, c.epingle, c.nom_evenement`

// ListForClient returns one page of the client's orders, newest first, and
// the number of orders matching the same predicate.  The caller's client id
// is always part of the predicate.
func (r *OrderRepo) ListForClient(ctx context.Context, clientID uint64, q OrderQuery) ([]OrderRecord, int64, error) {
	if clientID == 0 {
		return nil, 0, ErrClientNotFound
	}
	return r.list(ctx, &clientID, q)
}

// ListAll is the back-office variant of ListForClient over every client.
func (r *OrderRepo) ListAll(ctx context.Context, q OrderQuery) ([]OrderRecord, int64, error) {
	return r.list(ctx, nil, q)
}

// buildOrderPredicate assembles the WHERE clause shared by the count and the
// page query.
func buildOrderPredicate(clientID *uint64, q OrderQuery) (string, []any) {
	where := []string{}
	args := []any{}

	if clientID != nil {
		where = append(where, "c.client_r_id = ?")
		args = append(args, *clientID)
	}
	if len(q.Statuses) > 0 {
		where = append(where, "c.statut_commande IN ("+placeholders(len(q.Statuses))+")")
		for _, s := range q.Statuses {
			args = append(args, s)
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		or := []string{}
		// only a purely numeric term is compared with the order id
		if id, err := strconv.ParseUint(term, 10, 64); err == nil {
			or = append(or, "c.idcommande = ?")
			args = append(args, id)
		}
		pattern := likePattern(term)
		or = append(or,
			"EXISTS (SELECT 1 FROM details_commande_db d WHERE d.commande_r = c.idcommande AND LOWER(d.nom_plat) LIKE ?)",
			"LOWER(c.nom_evenement) LIKE ?")
		args = append(args, pattern, pattern)
		where = append(where, "("+strings.Join(or, " OR ")+")")
	}
	if q.StartDate != nil {
		where = append(where, "c.date_de_prise_de_commande >= ?")
		args = append(args, q.StartDate.UTC())
	}
	if q.EndDate != nil {
		where = append(where, "c.date_de_prise_de_commande <= ?")
		args = append(args, q.EndDate.UTC())
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

func (r *OrderRepo) list(ctx context.Context, clientID *uint64, q OrderQuery) ([]OrderRecord, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	cond, args := buildOrderPredicate(clientID, q)

	// count and page are read in one snapshot
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	countSQL := `SELECT COUNT(*) FROM commande_db c WHERE ` + cond
	if err := tx.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	dataSQL := `SELECT ` + orderColumns + `
		FROM commande_db c
		WHERE ` + cond + `
		ORDER BY c.date_de_prise_de_commande DESC, c.idcommande DESC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := tx.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	out, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := attachRelations(ctx, tx, out); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return out, total, nil
}

// GetForClient returns one order owned by clientID with its relations.
// ErrNotFound covers both a missing order and one owned by someone else.
func (r *OrderRepo) GetForClient(ctx context.Context, orderID, clientID uint64) (*OrderRecord, error) {
	return r.get(ctx, `c.idcommande = ? AND c.client_r_id = ?`, orderID, clientID)
}

// GetByID returns one order regardless of owner.
func (r *OrderRepo) GetByID(ctx context.Context, orderID uint64) (*OrderRecord, error) {
	return r.get(ctx, `c.idcommande = ?`, orderID)
}

func (r *OrderRepo) get(ctx context.Context, cond string, args ...any) (*OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM commande_db c WHERE `+cond+` LIMIT 1`, args...)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	out, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	if err := attachRelations(ctx, r.db, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func scanOrders(rows *sql.Rows) ([]OrderRecord, error) {
	defer rows.Close()
	out := make([]OrderRecord, 0)
	for rows.Next() {
		var (
			o                              OrderRecord
			clientID                       sql.NullInt64
			placedAt, pickupAt             sql.NullTime
			st, pay, delivery, notes, name sql.NullString
		)
		if err := rows.Scan(&o.ID, &clientID, &placedAt, &pickupAt, &st, &pay, &delivery, &notes, &o.Pinned, &name); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.ClientID = nullUint(clientID)
		o.PlacedAt = nullTime(placedAt)
		o.PickupAt = nullTime(pickupAt)
		o.Status = nullStr(st)
		o.PaymentStatus = nullStr(pay)
		o.DeliveryType = nullStr(delivery)
		o.Notes = nullStr(notes)
		o.EventName = nullStr(name)
		o.Items = []LineItemRecord{}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

// attachRelations loads line items and clients for all orders in two
// batch queries.
func attachRelations(ctx context.Context, qr queryer, orders []OrderRecord) error {
	if len(orders) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(orders))
	orderIDs := make([]uint64, 0, len(orders))
	clientIDs := make([]uint64, 0, len(orders))
	seenClient := map[uint64]bool{}
	for i, o := range orders {
		index[o.ID] = i
		orderIDs = append(orderIDs, o.ID)
		if o.ClientID != nil && !seenClient[*o.ClientID] {
			seenClient[*o.ClientID] = true
			clientIDs = append(clientIDs, *o.ClientID)
		}
	}

	items, err := loadLineItems(ctx, qr, orderIDs)
	if err != nil {
		return err
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}

	if len(clientIDs) == 0 {
		return nil
	}
	clients, err := loadClients(ctx, qr, clientIDs)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ClientID != nil {
			orders[i].Client = clients[*orders[i].ClientID]
		}
	}
	return nil
}

func loadLineItems(ctx context.Context, qr queryer, orderIDs []uint64) ([]LineItemRecord, error) {
	q := `SELECT d.iddetails, d.commande_r, d.type, d.plat_r, d.extra_id,
			d.quantite_plat_commande, COALESCE(d.prix_unitaire, 0), d.nom_plat,
			p.idplats, p.plat, p.description, p.prix, p.est_vegetarien, p.niveau_epice, p.categorie, p.photo_du_plat,
			e.idextra, e.nom_extra, e.description, e.prix, e.photo_url, e.actif
		FROM details_commande_db d
		LEFT JOIN plats_db p ON p.idplats = d.plat_r
		LEFT JOIN extras_db e ON e.idextra = d.extra_id
		WHERE d.commande_r IN (` + placeholders(len(orderIDs)) + `)
		ORDER BY d.commande_r, d.iddetails`
	rows, err := qr.QueryContext(ctx, q, uint64Args(orderIDs)...)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	out := make([]LineItemRecord, 0)
	for rows.Next() {
		var (
			it                         LineItemRecord
			typ, dishName              sql.NullString
			dishRef, extraRef          sql.NullInt64
			pID, eID                   sql.NullInt64
			pName, pDesc, pCat, pPhoto sql.NullString
			pPrice, ePrice             decimal.NullDecimal
			pVeg, eActive              sql.NullBool
			pSpice                     sql.NullInt64
			eName, eDesc, ePhoto       sql.NullString
		)
		if err := rows.Scan(
			&it.ID, &it.OrderID, &typ, &dishRef, &extraRef,
			&it.Quantity, &it.UnitPrice, &dishName,
			&pID, &pName, &pDesc, &pPrice, &pVeg, &pSpice, &pCat, &pPhoto,
			&eID, &eName, &eDesc, &ePrice, &ePhoto, &eActive,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		it.Type = nullStr(typ)
		it.DishID = nullUint(dishRef)
		it.ExtraID = nullUint(extraRef)
		it.DishName = nullStr(dishName)
		if pID.Valid {
			it.Dish = &CatalogDish{
				ID:          uint64(pID.Int64),
				Name:        pName.String,
				Description: nullStr(pDesc),
				Price:       pPrice.Decimal,
				Vegetarian:  pVeg.Bool,
				SpiceLevel:  int(pSpice.Int64),
				Category:    nullStr(pCat),
				Photo:       nullStr(pPhoto),
			}
		}
		if eID.Valid {
			it.Extra = &CatalogExtra{
				ID:          uint64(eID.Int64),
				Name:        eName.String,
				Description: nullStr(eDesc),
				Price:       ePrice.Decimal,
				Photo:       nullStr(ePhoto),
				Active:      eActive.Bool,
			}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return out, nil
}

func loadClients(ctx context.Context, qr queryer, ids []uint64) (map[uint64]*model.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM client_db WHERE idclient IN (` + placeholders(len(ids)) + `)`
	rows, err := qr.QueryContext(ctx, q, uint64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	defer rows.Close()
	out := make(map[uint64]*model.Client, len(ids))
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}
