package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
)

var dishCols = []string{"idplats", "plat", "description", "prix",
	"lundi_dispo", "mardi_dispo", "mercredi_dispo", "jeudi_dispo", "vendredi_dispo", "samedi_dispo", "dimanche_dispo",
	"est_en_rupture", "raison_rupture", "rupture_debut", "rupture_fin",
	"est_vegetarien", "niveau_epice", "categorie", "photo_du_plat", "created_at", "updated_at"}

var fixedNow = time.Date(2029, 12, 20, 10, 0, 0, 0, time.UTC)

func newCheckout(t *testing.T) (*CheckoutHandler, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	pub := &recordingPublisher{}
	h := NewCheckoutHandler(db, repository.NewOrderRepo(db), repository.NewDishRepo(db), repository.NewExtraRepo(db), fakeClients{9: 7}, pub)
	h.now = func() time.Time { return fixedNow }
	return h, mock, pub
}

func dishRow(soldOut bool) *sqlmock.Rows {
	return sqlmock.NewRows(dishCols).AddRow(3, "Pad Thaï", nil, "12.50",
		true, true, true, true, true, false, false,
		soldOut, nil, nil, nil,
		false, 2, "Nouilles", nil, fixedNow, fixedNow)
}

// 2030-01-02 is a Wednesday.
const cartBody = `{"items":[{"type":"plat","id":3,"quantity":2}],
	"date_et_heure_de_retrait_souhaitees":"2030-01-02T12:00:00Z","type_livraison":"a emporter"}`

func TestCheckoutCreatesOrderWithSnapshots(t *testing.T) {
	h, mock, pub := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM plats_db WHERE idplats IN \(\?\) FOR UPDATE`).WillReturnRows(dishRow(false))
	mock.ExpectExec(`INSERT INTO commande_db`).
		WithArgs(uint64(7), sqlmock.AnyArg(), "En attente de confirmation", "En attente sur place", "À emporter", nil, nil).
		WillReturnResult(sqlmock.NewResult(55, 1))
	mock.ExpectExec(`INSERT INTO details_commande_db`).
		WithArgs(uint64(55), "plat", sqlmock.AnyArg(), nil, 2, "12.50", "Pad Thaï").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM commande_db c WHERE c.idcommande = \? AND c.client_r_id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"idcommande", "client_r_id", "date_de_prise_de_commande",
			"date_et_heure_de_retrait_souhaitees", "statut_commande", "statut_paiement", "type_livraison",
			"demande_special_pour_la_commande", "epingle", "nom_evenement"}).
			AddRow(55, 7, fixedNow, fixedNow, "En attente de confirmation", "En attente sur place", "À emporter", nil, false, nil))
	mock.ExpectQuery(`FROM details_commande_db d`).WillReturnRows(sqlmock.NewRows([]string{"iddetails"}))
	mock.ExpectQuery(`FROM client_db WHERE idclient IN`).WillReturnRows(sqlmock.NewRows([]string{"idclient"}))

	c, rec := newCtx(http.MethodPost, "/v1/commandes", cartBody, 9)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(55), data["idcommande"])
	require.Len(t, pub.sent, 1)
	assert.Equal(t, queue.EventOrderCreated, pub.sent[0].Type)
	assert.Equal(t, uint64(7), pub.sent[0].Message.ClientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutAnswersCreatedWhenReReadFails(t *testing.T) {
	h, mock, pub := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM plats_db WHERE idplats IN \(\?\) FOR UPDATE`).WillReturnRows(dishRow(false))
	mock.ExpectExec(`INSERT INTO commande_db`).WillReturnResult(sqlmock.NewResult(56, 1))
	mock.ExpectExec(`INSERT INTO details_commande_db`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM commande_db c WHERE c.idcommande = \? AND c.client_r_id = \?`).
		WillReturnError(errors.New("connection reset"))

	c, rec := newCtx(http.MethodPost, "/v1/commandes", cartBody, 9)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(56), data["idcommande"])
	assert.Equal(t, "25", data["prix_total"])
	assert.Equal(t, "En attente de confirmation", data["statut_commande"])
	require.Len(t, data["details"], 1)
	require.Len(t, pub.sent, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsSoldOutDish(t *testing.T) {
	h, mock, pub := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM plats_db WHERE idplats IN \(\?\) FOR UPDATE`).WillReturnRows(dishRow(true))
	mock.ExpectRollback()

	c, rec := newCtx(http.MethodPost, "/v1/commandes", cartBody, 9)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "sold out")
	assert.Empty(t, pub.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsUnknownDish(t *testing.T) {
	h, mock, _ := newCheckout(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM plats_db`).WillReturnRows(sqlmock.NewRows(dishCols))
	mock.ExpectRollback()

	c, rec := newCtx(http.MethodPost, "/v1/commandes", cartBody, 9)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutValidation(t *testing.T) {
	cases := map[string]struct {
		body string
		uid  uint64
		code int
	}{
		"past pickup": {
			body: `{"items":[{"type":"plat","id":3,"quantity":1}],"date_et_heure_de_retrait_souhaitees":"2020-01-01T12:00:00Z","type_livraison":"Livraison"}`,
			uid:  9, code: http.StatusBadRequest,
		},
		"zero quantity": {
			body: `{"items":[{"type":"plat","id":3,"quantity":0}],"date_et_heure_de_retrait_souhaitees":"2030-01-02T12:00:00Z","type_livraison":"Livraison"}`,
			uid:  9, code: http.StatusBadRequest,
		},
		"unknown item type": {
			body: `{"items":[{"type":"boisson","id":3,"quantity":1}],"date_et_heure_de_retrait_souhaitees":"2030-01-02T12:00:00Z","type_livraison":"Livraison"}`,
			uid:  9, code: http.StatusBadRequest,
		},
		"empty cart": {
			body: `{"items":[],"date_et_heure_de_retrait_souhaitees":"2030-01-02T12:00:00Z","type_livraison":"Livraison"}`,
			uid:  9, code: http.StatusBadRequest,
		},
		"unknown delivery type": {
			body: `{"items":[{"type":"plat","id":3,"quantity":1}],"date_et_heure_de_retrait_souhaitees":"2030-01-02T12:00:00Z","type_livraison":"drone"}`,
			uid:  9, code: http.StatusBadRequest,
		},
		"anonymous": {body: cartBody, uid: 0, code: http.StatusUnauthorized},
		"no profile": {body: cartBody, uid: 1, code: http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h, mock, _ := newCheckout(t)
			c, rec := newCtx(http.MethodPost, "/v1/commandes", tc.body, tc.uid)
			require.NoError(t, h.Create(c))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, false, decode(t, rec)["success"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
