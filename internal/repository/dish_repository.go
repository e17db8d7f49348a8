package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/model"
)

// DishRepo provides CRUD operations for plats_db.
type DishRepo struct{ db *sql.DB }

func NewDishRepo(db *sql.DB) *DishRepo { return &DishRepo{db: db} }

const dishColumns = `idplats, plat, description, prix,
	lundi_dispo, mardi_dispo, mercredi_dispo, jeudi_dispo, vendredi_dispo, samedi_dispo, dimanche_dispo,
	est_en_rupture, raison_rupture, rupture_debut, rupture_fin,
	est_vegetarien, niveau_epice, categorie, photo_du_plat, created_at, updated_at`

func scanDish(s rowScanner) (*model.Dish, error) {
	var (
		d                             model.Dish
		desc, reason, category, photo sql.NullString
		from, until                   sql.NullTime
	)
	w := &d.Availability
	if err := s.Scan(&d.ID, &d.Name, &desc, &d.Price,
		&w.Monday, &w.Tuesday, &w.Wednesday, &w.Thursday, &w.Friday, &w.Saturday, &w.Sunday,
		&d.SoldOut, &reason, &from, &until,
		&d.Vegetarian, &d.SpiceLevel, &category, &photo, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Description = nullStr(desc)
	d.SoldOutReason = nullStr(reason)
	d.SoldOutFrom = nullTime(from)
	d.SoldOutUntil = nullTime(until)
	d.Category = nullStr(category)
	d.Photo = nullStr(photo)
	return &d, nil
}

// DishFilter narrows the public menu.  Day is a French weekday name.
type DishFilter struct {
	Day        string
	Category   string
	Vegetarian *bool
}

// List returns dishes ordered by category then name.
func (r *DishRepo) List(ctx context.Context, f DishFilter) ([]model.Dish, error) {
	where := []string{}
	args := []any{}
	if f.Day != "" {
		col, ok := model.DayColumn(f.Day)
		if !ok {
			return nil, fmt.Errorf("unknown day %q", f.Day)
		}
		where = append(where, col+" = 1")
	}
	if f.Category != "" {
		where = append(where, "LOWER(categorie) = ?")
		args = append(args, strings.ToLower(f.Category))
	}
	if f.Vegetarian != nil {
		where = append(where, "est_vegetarien = ?")
		args = append(args, *f.Vegetarian)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+dishColumns+` FROM plats_db WHERE `+cond+` ORDER BY categorie, plat`, args...)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()
	out := make([]model.Dish, 0)
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetByID returns one dish or ErrNotFound.
func (r *DishRepo) GetByID(ctx context.Context, id uint64) (*model.Dish, error) {
	d, err := scanDish(r.db.QueryRowContext(ctx, `SELECT `+dishColumns+` FROM plats_db WHERE idplats = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dish: %w", err)
	}
	return d, nil
}

// DishInput holds the writable catalog columns.
type DishInput struct {
	Name         string
	Description  *string
	Price        decimal.Decimal
	Availability model.Weekdays
	Vegetarian   bool
	SpiceLevel   int
	Category     *string
	Photo        *string
}

func (in DishInput) args() []any {
	w := in.Availability
	return []any{in.Name, in.Description, in.Price.StringFixed(2),
		w.Monday, w.Tuesday, w.Wednesday, w.Thursday, w.Friday, w.Saturday, w.Sunday,
		in.Vegetarian, in.SpiceLevel, in.Category, in.Photo}
}

// Create inserts a dish and returns its id.
func (r *DishRepo) Create(ctx context.Context, in DishInput) (uint64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO plats_db (plat, description, prix,
		lundi_dispo, mardi_dispo, mercredi_dispo, jeudi_dispo, vendredi_dispo, samedi_dispo, dimanche_dispo,
		est_vegetarien, niveau_epice, categorie, photo_du_plat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, in.args()...)
	if err != nil {
		return 0, fmt.Errorf("insert dish: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites every catalog column of a dish.
func (r *DishRepo) Update(ctx context.Context, id uint64, in DishInput) error {
	args := append(in.args(), id)
	res, err := r.db.ExecContext(ctx, `UPDATE plats_db SET plat = ?, description = ?, prix = ?,
		lundi_dispo = ?, mardi_dispo = ?, mercredi_dispo = ?, jeudi_dispo = ?, vendredi_dispo = ?, samedi_dispo = ?, dimanche_dispo = ?,
		est_vegetarien = ?, niveau_epice = ?, categorie = ?, photo_du_plat = ?, updated_at = NOW()
		WHERE idplats = ?`, args...)
	if err != nil {
		return fmt.Errorf("update dish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSoldOut records or clears the sold-out state.  Clearing also wipes the
// reason and window.
func (r *DishRepo) SetSoldOut(ctx context.Context, id uint64, soldOut bool, reason *string, from, until *time.Time) error {
	if !soldOut {
		reason, from, until = nil, nil, nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE plats_db SET est_en_rupture = ?, raison_rupture = ?, rupture_debut = ?, rupture_fin = ?, updated_at = NOW()
		WHERE idplats = ?`, soldOut, reason, from, until, id)
	if err != nil {
		return fmt.Errorf("set sold out: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a dish.  Line items keep their snapshot; plat_r is set to
// NULL by the foreign key.
func (r *DishRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plats_db WHERE idplats = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LockForOrderTx loads and locks the given dishes for checkout.  Missing
// ids are simply absent from the map.
func (r *DishRepo) LockForOrderTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]model.Dish, error) {
	out := make(map[uint64]model.Dish, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := tx.QueryContext(ctx, `SELECT `+dishColumns+` FROM plats_db WHERE idplats IN (`+placeholders(len(ids))+`) FOR UPDATE`, uint64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("lock dishes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		out[d.ID] = *d
	}
	return out, rows.Err()
}
