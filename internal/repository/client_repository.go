package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chanthanathaicook/backend/internal/model"
)

// ClientRepo manages client_db rows.
type ClientRepo struct{ db *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `idclient, auth_user_id, nom, prenom, email, numero_de_telephone,
	adresse_numero_et_rue, code_postal, ville, preference_client, photo_client, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(s rowScanner) (*model.Client, error) {
	var (
		c                                 model.Client
		last, first, email, phone, street sql.NullString
		postal, city, pref, photo         sql.NullString
	)
	if err := s.Scan(&c.ID, &c.AuthUserID, &last, &first, &email, &phone,
		&street, &postal, &city, &pref, &photo, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.LastName = nullStr(last)
	c.FirstName = nullStr(first)
	c.Email = nullStr(email)
	c.Phone = nullStr(phone)
	c.Street = nullStr(street)
	c.PostalCode = nullStr(postal)
	c.City = nullStr(city)
	c.Preference = nullStr(pref)
	c.Photo = nullStr(photo)
	return &c, nil
}

// IDByAuthUser resolves the client id linked to an auth identity.
func (r *ClientRepo) IDByAuthUser(ctx context.Context, authUserID uint64) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT idclient FROM client_db WHERE auth_user_id = ? LIMIT 1`, authUserID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrClientNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve client: %w", err)
	}
	return id, nil
}

// GetByAuthUser returns the profile linked to an auth identity.
func (r *ClientRepo) GetByAuthUser(ctx context.Context, authUserID uint64) (*model.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM client_db WHERE auth_user_id = ? LIMIT 1`, authUserID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// GetByID returns a profile by client id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM client_db WHERE idclient = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// CreateTx inserts the profile of a freshly registered identity.
func (r *ClientRepo) CreateTx(ctx context.Context, tx *sql.Tx, authUserID uint64, email string) (uint64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO client_db (auth_user_id, email) VALUES (?, ?)`, authUserID, email)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ClientPatch is a partial profile update; nil fields are left unchanged.
type ClientPatch struct {
	LastName   *string
	FirstName  *string
	Phone      *string
	Street     *string
	PostalCode *string
	City       *string
	Preference *string
	Photo      *string
}

// Update applies patch to the client row.  An empty patch is a no-op.
func (r *ClientRepo) Update(ctx context.Context, id uint64, p ClientPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("nom", p.LastName)
	add("prenom", p.FirstName)
	add("numero_de_telephone", p.Phone)
	add("adresse_numero_et_rue", p.Street)
	add("code_postal", p.PostalCode)
	add("ville", p.City)
	add("preference_client", p.Preference)
	add("photo_client", p.Photo)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE client_db SET `+strings.Join(sets, ", ")+`, updated_at = NOW() WHERE idclient = ?`, args...)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}

// List returns a page of clients for the back-office, optionally filtered
// by a case-insensitive match on name or email.
func (r *ClientRepo) List(ctx context.Context, search string, page, pageSize int) ([]model.Client, int64, error) {
	cond := "1=1"
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		cond = "(LOWER(nom) LIKE ? OR LOWER(prenom) LIKE ? OR LOWER(email) LIKE ?)"
		p := likePattern(s)
		args = append(args, p, p, p)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM client_db WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM client_db WHERE `+cond+`
		ORDER BY created_at DESC, idclient DESC LIMIT ? OFFSET ?`,
		append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	out := make([]model.Client, 0, pageSize)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
