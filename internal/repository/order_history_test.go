package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderPredicateScopesToClient(t *testing.T) {
	id := uint64(7)
	cond, args := buildOrderPredicate(&id, OrderQuery{})
	assert.Equal(t, "c.client_r_id = ?", cond)
	assert.Equal(t, []any{uint64(7)}, args)
}

func TestBuildOrderPredicateNumericSearch(t *testing.T) {
	id := uint64(7)
	cond, args := buildOrderPredicate(&id, OrderQuery{Search: " 42 "})
	assert.Contains(t, cond, "c.idcommande = ?")
	assert.Contains(t, cond, "LOWER(d.nom_plat) LIKE ?")
	assert.Contains(t, cond, "LOWER(c.nom_evenement) LIKE ?")
	assert.Equal(t, []any{uint64(7), uint64(42), "%42%", "%42%"}, args)
}

func TestBuildOrderPredicateTextSearchSkipsID(t *testing.T) {
	id := uint64(7)
	cond, args := buildOrderPredicate(&id, OrderQuery{Search: "Pad_Thaï"})
	assert.NotContains(t, cond, "c.idcommande = ?")
	assert.Equal(t, []any{uint64(7), `%pad\_thaï%`, `%pad\_thaï%`}, args)
}

func TestBuildOrderPredicateStatusAndDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	cond, args := buildOrderPredicate(nil, OrderQuery{
		Statuses:  []string{"Confirmée", "Confirm_e"},
		StartDate: &start,
		EndDate:   &end,
	})
	assert.Equal(t, "c.statut_commande IN (?,?) AND c.date_de_prise_de_commande >= ? AND c.date_de_prise_de_commande <= ?", cond)
	assert.Equal(t, []any{"Confirmée", "Confirm_e", start, end}, args)
}

func TestListForClientRequiresClient(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, _, err = NewOrderRepo(db).ListForClient(context.Background(), 0, OrderQuery{})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

var lineItemCols = []string{"iddetails", "commande_r", "type", "plat_r", "extra_id",
	"quantite_plat_commande", "prix_unitaire", "nom_plat",
	"idplats", "plat", "p_description", "p_prix", "est_vegetarien", "niveau_epice", "categorie", "photo_du_plat",
	"idextra", "nom_extra", "e_description", "e_prix", "photo_url", "actif"}

var orderCols = []string{"idcommande", "client_r_id", "date_de_prise_de_commande",
	"date_et_heure_de_retrait_souhaitees", "statut_commande", "statut_paiement",
	"type_livraison", "demande_special_pour_la_commande", "epingle", "nom_evenement"}

var clientCols = []string{"idclient", "auth_user_id", "nom", "prenom", "email", "numero_de_telephone",
	"adresse_numero_et_rue", "code_postal", "ville", "preference_client", "photo_client", "created_at", "updated_at"}

func TestListForClientLoadsRelations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	placed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM commande_db c WHERE c.client_r_id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.date_de_prise_de_commande DESC, c.idcommande DESC")).
		WithArgs(uint64(3), 10, 20).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(9, 3, placed, nil, "Confirm_e", "pay_en_ligne", "Livraison", nil, false, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM details_commande_db d")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(lineItemCols).
			AddRow(1, 9, "plat", 5, nil, 2, "12.50", "Pad Thaï",
				5, "Pad Thaï", nil, "13.00", false, 2, "Wok", nil,
				nil, nil, nil, nil, nil, nil).
			AddRow(2, 9, "plat", 6, nil, 1, "8.00", "Plat supprimé",
				nil, nil, nil, nil, nil, nil, nil, nil,
				nil, nil, nil, nil, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM client_db WHERE idclient IN (?)")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(clientCols).
			AddRow(3, 11, "Dupont", "Marie", "marie@example.com", nil, nil, nil, nil, nil, nil, placed, placed))
	mock.ExpectCommit()

	out, total, err := NewOrderRepo(db).ListForClient(context.Background(), 3, OrderQuery{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, out, 1)
	o := out[0]
	assert.Equal(t, "Confirm_e", *o.Status)
	assert.Nil(t, o.PickupAt)
	require.Len(t, o.Items, 2)
	require.NotNil(t, o.Items[0].Dish)
	assert.Equal(t, "13", o.Items[0].Dish.Price.String())
	assert.Equal(t, "12.5", o.Items[0].UnitPrice.String())
	assert.Nil(t, o.Items[1].Dish)
	assert.Equal(t, "Plat supprimé", *o.Items[1].DishName)
	require.NotNil(t, o.Client)
	assert.Equal(t, "Marie", *o.Client.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForClientNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.idcommande = ? AND c.client_r_id = ?")).
		WithArgs(uint64(9), uint64(4)).
		WillReturnRows(sqlmock.NewRows(orderCols))

	_, err = NewOrderRepo(db).GetForClient(context.Background(), 9, 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := "Prête à récupérer"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT client_r_id FROM commande_db WHERE idcommande = ? FOR UPDATE")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"client_r_id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE commande_db SET statut_commande = ? WHERE idcommande = ?")).
		WithArgs(st, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	clientID, err := NewOrderRepo(db).UpdateStatus(context.Background(), 9, &st, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), clientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := "Annulée"
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"client_r_id"}))
	mock.ExpectRollback()

	_, err = NewOrderRepo(db).UpdateStatus(context.Background(), 9, &st, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLinesBulkTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dish := uint64(5)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?, ?, ?, ?, ?, ?, ?),(?, ?, ?, ?, ?, ?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	repo := NewOrderRepo(db)
	require.NoError(t, repo.CreateLinesBulkTx(context.Background(), tx, 9, []NewLineItem{
		{Type: "plat", DishID: &dish, Quantity: 2, Name: "Pad Thaï"},
		{Type: "plat", DishID: &dish, Quantity: 1, Name: "Pad Thaï"},
	}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
