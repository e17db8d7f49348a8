package handler

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/history"
	"github.com/chanthanathaicook/backend/internal/queue"
	"github.com/chanthanathaicook/backend/internal/repository"
)

func TestAdminExportWalksAllPages(t *testing.T) {
	orders := &staticOrders{records: sampleOrders(history.MaxPageSize + 3)}
	h := NewAdminOrderHandler(history.NewService(orders, noEvents{}, fakeClients{}), nil, nil, &recordingPublisher{})
	h.now = func() time.Time { return time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC) }

	c, rec := newCtx(http.MethodGet, "/v1/admin/commandes/export.xlsx", "", 1)
	require.NoError(t, h.Export(c))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "commandes-20240302.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	assert.Equal(t, 2, orders.lastQ.Page)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	pub := &recordingPublisher{}
	h := NewAdminOrderHandler(nil, repository.NewOrderRepo(db), nil, pub)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT client_r_id FROM commande_db WHERE idcommande = \? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"client_r_id"}).AddRow(7))
	mock.ExpectExec(`UPDATE commande_db SET statut_commande = \? WHERE idcommande = \?`).
		WithArgs("Prête à récupérer", 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newCtx(http.MethodPatch, "/v1/admin/commandes/12/statut", `{"statutCommande":"Prête à récupérer"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("12")
	require.NoError(t, h.UpdateStatus(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, queue.EventOrderStatusChanged, pub.sent[0].Type)
	assert.Contains(t, pub.sent[0].Message.Body, "Prête à récupérer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateOrderStatusRejectsNonCanonical(t *testing.T) {
	h := NewAdminOrderHandler(nil, nil, nil, &recordingPublisher{})

	for _, body := range []string{`{}`, `{"statutCommande":"Confirm_e"}`, `{"statutPaiement":"gratuit"}`} {
		c, rec := newCtx(http.MethodPatch, "/v1/admin/commandes/12/statut", body, 1)
		c.SetParamNames("id")
		c.SetParamValues("12")
		require.NoError(t, h.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestAdminSendMessageQueuesEnvelope(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	pub := &recordingPublisher{}
	h := NewAdminClientHandler(repository.NewClientRepo(db), pub)

	mock.ExpectQuery(`FROM client_db WHERE idclient = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"idclient", "auth_user_id", "nom", "prenom", "email", "numero_de_telephone",
			"adresse_numero_et_rue", "code_postal", "ville", "preference_client", "photo_client", "created_at", "updated_at"}).
			AddRow(7, 9, "Dupont", "Marie", "marie@example.com", nil, nil, nil, nil, nil, nil, time.Now(), time.Now()))

	c, rec := newCtx(http.MethodPost, "/v1/admin/notifications", `{"clientId":7,"title":"Fermeture","body":"Fermé lundi"}`, 1)
	require.NoError(t, h.SendMessage(c))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, queue.EventAdminMessage, pub.sent[0].Type)
	assert.Equal(t, uint64(7), pub.sent[0].Message.ClientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogQueryValidation(t *testing.T) {
	h := NewCatalogHandler(nil, nil)

	c, rec := newCtx(http.MethodGet, "/v1/plats?jour=funday", "", 0)
	require.NoError(t, h.ListDishes(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newCtx(http.MethodGet, "/v1/plats?vegetarien=peut-etre", "", 0)
	require.NoError(t, h.ListDishes(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSoldOutWindowValidation(t *testing.T) {
	h := NewAdminCatalogHandler(nil, nil, nil, "menu")
	c, rec := newCtx(http.MethodPatch, "/v1/admin/plats/3/rupture",
		`{"est_en_rupture":true,"rupture_debut":"2024-05-02T00:00:00Z","rupture_fin":"2024-05-01T00:00:00Z"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.SetSoldOut(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
