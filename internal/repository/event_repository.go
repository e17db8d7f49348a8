package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chanthanathaicook/backend/internal/model"
)

// EventRepo manages catering requests in evenements_db.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// EventQuery mirrors OrderQuery for events.  Dates bound date_evenement.
type EventQuery struct {
	Page      int
	PageSize  int
	Statuses  []string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

const eventColumns = `idevenements, contact_client_r_id, nom_evenement, type_d_evenement, date_evenement,
	nombre_de_personnes, budget_client, demandes_speciales_evenement, plats_preselectionnes,
	statut_evenement, created_at, updated_at`

func scanEvent(s rowScanner) (*model.Event, error) {
	var (
		e                      model.Event
		typ, notes, st, dishes sql.NullString
	)
	if err := s.Scan(&e.ID, &e.ClientID, &e.Name, &typ, &e.Date,
		&e.Guests, &e.Budget, &notes, &dishes,
		&st, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Type = nullStr(typ)
	e.SpecialRequests = nullStr(notes)
	e.Status = nullStr(st)
	e.PreselectedDishes = []uint64{}
	if dishes.Valid && dishes.String != "" {
		if err := json.Unmarshal([]byte(dishes.String), &e.PreselectedDishes); err != nil {
			return nil, fmt.Errorf("decode preselected dishes: %w", err)
		}
	}
	return &e, nil
}

func buildEventPredicate(clientID uint64, q EventQuery) (string, []any) {
	where := []string{"contact_client_r_id = ?"}
	args := []any{clientID}
	if len(q.Statuses) > 0 {
		where = append(where, "statut_evenement IN ("+placeholders(len(q.Statuses))+")")
		for _, s := range q.Statuses {
			args = append(args, s)
		}
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := likePattern(term)
		where = append(where, "(LOWER(nom_evenement) LIKE ? OR LOWER(type_d_evenement) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if q.StartDate != nil {
		where = append(where, "date_evenement >= ?")
		args = append(args, q.StartDate.UTC())
	}
	if q.EndDate != nil {
		where = append(where, "date_evenement <= ?")
		args = append(args, q.EndDate.UTC())
	}
	return strings.Join(where, " AND "), args
}

// ListForClient returns one page of the client's events, latest event
// date first, with the matching count.
func (r *EventRepo) ListForClient(ctx context.Context, clientID uint64, q EventQuery) ([]model.Event, int64, error) {
	if clientID == 0 {
		return nil, 0, ErrClientNotFound
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	cond, args := buildEventPredicate(clientID, q)

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM evenements_db WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)
	rows, err := tx.QueryContext(ctx, `SELECT `+eventColumns+` FROM evenements_db WHERE `+cond+`
		ORDER BY date_evenement DESC, idevenements DESC LIMIT ? OFFSET ?`, argsData...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return out, total, nil
}

// GetByID returns one event or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM evenements_db WHERE idevenements = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// NewEvent is a catering request as submitted by a client.
type NewEvent struct {
	ClientID          uint64
	Name              string
	Type              *string
	Date              time.Time
	Guests            int
	Budget            *decimal.Decimal
	SpecialRequests   *string
	PreselectedDishes []uint64
	Status            string
}

// Create inserts an event request and returns its id.
func (r *EventRepo) Create(ctx context.Context, e NewEvent) (uint64, error) {
	dishes := e.PreselectedDishes
	if dishes == nil {
		dishes = []uint64{}
	}
	raw, err := json.Marshal(dishes)
	if err != nil {
		return 0, err
	}
	var budget any
	if e.Budget != nil {
		budget = e.Budget.StringFixed(2)
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO evenements_db
		(contact_client_r_id, nom_evenement, type_d_evenement, date_evenement, nombre_de_personnes,
		 budget_client, demandes_speciales_evenement, plats_preselectionnes, statut_evenement)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ClientID, e.Name, e.Type, e.Date.UTC(), e.Guests, budget, e.SpecialRequests, string(raw), e.Status)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateStatus sets the event status and returns the owning client id.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, status string) (uint64, error) {
	var clientID uint64
	err := r.db.QueryRowContext(ctx, `SELECT contact_client_r_id FROM evenements_db WHERE idevenements = ?`, id).Scan(&clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get event owner: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE evenements_db SET statut_evenement = ?, updated_at = UTC_TIMESTAMP() WHERE idevenements = ?`, status, id); err != nil {
		return 0, fmt.Errorf("update event status: %w", err)
	}
	return clientID, nil
}
