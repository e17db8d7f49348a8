package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/model"
)

// ExtraRepo manages extras_db.
type ExtraRepo struct{ db *sql.DB }

func NewExtraRepo(db *sql.DB) *ExtraRepo { return &ExtraRepo{db: db} }

const extraColumns = `idextra, nom_extra, description, prix, photo_url, actif, created_at`

func scanExtra(s rowScanner) (*model.Extra, error) {
	var (
		e           model.Extra
		desc, photo sql.NullString
	)
	if err := s.Scan(&e.ID, &e.Name, &desc, &e.Price, &photo, &e.Active, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Description = nullStr(desc)
	e.Photo = nullStr(photo)
	return &e, nil
}

// List returns extras by name; activeOnly hides disabled ones.
func (r *ExtraRepo) List(ctx context.Context, activeOnly bool) ([]model.Extra, error) {
	q := `SELECT ` + extraColumns + ` FROM extras_db`
	if activeOnly {
		q += ` WHERE actif = 1`
	}
	rows, err := r.db.QueryContext(ctx, q+` ORDER BY nom_extra`)
	if err != nil {
		return nil, fmt.Errorf("list extras: %w", err)
	}
	defer rows.Close()
	out := make([]model.Extra, 0)
	for rows.Next() {
		e, err := scanExtra(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GetByID returns one extra or ErrNotFound.
func (r *ExtraRepo) GetByID(ctx context.Context, id uint64) (*model.Extra, error) {
	e, err := scanExtra(r.db.QueryRowContext(ctx, `SELECT `+extraColumns+` FROM extras_db WHERE idextra = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get extra: %w", err)
	}
	return e, nil
}

// ExtraInput holds the writable columns of an extra.
type ExtraInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Photo       *string
	Active      bool
}

// Create inserts an extra and returns its id.
func (r *ExtraRepo) Create(ctx context.Context, in ExtraInput) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO extras_db (nom_extra, description, prix, photo_url, actif) VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.Price.StringFixed(2), in.Photo, in.Active)
	if err != nil {
		return 0, fmt.Errorf("insert extra: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites an extra.
func (r *ExtraRepo) Update(ctx context.Context, id uint64, in ExtraInput) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE extras_db SET nom_extra = ?, description = ?, prix = ?, photo_url = ?, actif = ? WHERE idextra = ?`,
		in.Name, in.Description, in.Price.StringFixed(2), in.Photo, in.Active, id)
	if err != nil {
		return fmt.Errorf("update extra: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an extra; line items keep their snapshot.
func (r *ExtraRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM extras_db WHERE idextra = ?`, id)
	if err != nil {
		return fmt.Errorf("delete extra: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LockForOrderTx loads and locks the given extras for checkout.
func (r *ExtraRepo) LockForOrderTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]model.Extra, error) {
	out := make(map[uint64]model.Extra, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := tx.QueryContext(ctx, `SELECT `+extraColumns+` FROM extras_db WHERE idextra IN (`+placeholders(len(ids))+`) FOR UPDATE`, uint64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("lock extras: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanExtra(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		out[e.ID] = *e
	}
	return out, rows.Err()
}
