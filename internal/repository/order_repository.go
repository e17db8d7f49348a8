package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NewOrder carries the columns written at checkout.  Statuses are canonical
// labels.
type NewOrder struct {
	ClientID      uint64
	PickupAt      time.Time
	Status        string
	PaymentStatus string
	DeliveryType  string
	Notes         *string
	EventName     *string
}

// NewLineItem is one details_commande_db row to insert.  Exactly one of
// DishID and ExtraID is set; UnitPrice and Name are the snapshot.
type NewLineItem struct {
	Type      string
	DishID    *uint64
	ExtraID   *uint64
	Quantity  int
	UnitPrice decimal.Decimal
	Name      string
}

// CreateTx inserts a new order within an existing transaction and returns
// its id.  The caller must commit or rollback.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o NewOrder) (uint64, error) {
	const q = `INSERT INTO commande_db
		(client_r_id, date_de_prise_de_commande, date_et_heure_de_retrait_souhaitees,
		 statut_commande, statut_paiement, type_livraison, demande_special_pour_la_commande, epingle, nom_evenement)
		VALUES (?, UTC_TIMESTAMP(), ?, ?, ?, ?, ?, 0, ?)`
	res, err := tx.ExecContext(ctx, q, o.ClientID, o.PickupAt.UTC(), o.Status, o.PaymentStatus, o.DeliveryType, o.Notes, o.EventName)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateLinesBulkTx inserts all line items of an order in one statement.
// Passing an empty slice has no effect.
func (r *OrderRepo) CreateLinesBulkTx(ctx context.Context, tx *sql.Tx, orderID uint64, items []NewLineItem) error {
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO details_commande_db (commande_r, type, plat_r, extra_id, quantite_plat_commande, prix_unitaire, nom_plat) VALUES `)
	args := make([]any, 0, len(items)*7)
	for i, it := range items {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, orderID, it.Type, it.DishID, it.ExtraID, it.Quantity, it.UnitPrice.StringFixed(2), it.Name)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert line items: %w", err)
	}
	return nil
}

// UpdateStatus writes new order and/or payment statuses.  Nil leaves the
// column unchanged.  Returns the owning client id for notifications.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID uint64, orderStatus, paymentStatus *string) (uint64, error) {
	sets := []string{}
	args := []any{}
	if orderStatus != nil {
		sets = append(sets, "statut_commande = ?")
		args = append(args, *orderStatus)
	}
	if paymentStatus != nil {
		sets = append(sets, "statut_paiement = ?")
		args = append(args, *paymentStatus)
	}
	if len(sets) == 0 {
		return 0, fmt.Errorf("update order status: nothing to update")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var clientID sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT client_r_id FROM commande_db WHERE idcommande = ? FOR UPDATE`, orderID).Scan(&clientID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock order: %w", err)
	}
	args = append(args, orderID)
	if _, err := tx.ExecContext(ctx, `UPDATE commande_db SET `+strings.Join(sets, ", ")+` WHERE idcommande = ?`, args...); err != nil {
		return 0, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return uint64(clientID.Int64), nil
}

// TogglePin flips the pinned flag and returns the new value.
func (r *OrderRepo) TogglePin(ctx context.Context, orderID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE commande_db SET epingle = NOT epingle WHERE idcommande = ?`, orderID)
	if err != nil {
		return false, fmt.Errorf("toggle pin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrNotFound
	}
	var pinned bool
	if err := r.db.QueryRowContext(ctx, `SELECT epingle FROM commande_db WHERE idcommande = ?`, orderID).Scan(&pinned); err != nil {
		return false, fmt.Errorf("read pin: %w", err)
	}
	return pinned, nil
}
