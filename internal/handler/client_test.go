package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanthanathaicook/backend/internal/repository"
)

var clientCols = []string{"idclient", "auth_user_id", "nom", "prenom", "email", "numero_de_telephone",
	"adresse_numero_et_rue", "code_postal", "ville", "preference_client", "photo_client", "created_at", "updated_at"}

func TestUpdateProfilePatchesOnlyGivenFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewClientHandler(repository.NewClientRepo(db))

	mock.ExpectQuery(`SELECT idclient FROM client_db WHERE auth_user_id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"idclient"}).AddRow(7))
	mock.ExpectExec(`UPDATE client_db SET ville = \?, updated_at = NOW\(\) WHERE idclient = \?`).
		WithArgs("Lyon", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM client_db WHERE idclient = \?`).
		WillReturnRows(sqlmock.NewRows(clientCols).
			AddRow(7, 9, "Dupont", "Marie", "marie@example.com", nil, nil, nil, "Lyon", nil, nil, time.Now(), time.Now()))

	c, rec := newCtx(http.MethodPatch, "/v1/profil", `{"ville":"Lyon"}`, 9)
	require.NoError(t, h.Update(c))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Lyon", data["ville"])
	assert.Equal(t, "Dupont", data["nom"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileWithoutProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewClientHandler(repository.NewClientRepo(db))

	mock.ExpectQuery(`FROM client_db WHERE auth_user_id = \?`).WillReturnRows(sqlmock.NewRows(clientCols))

	c, rec := newCtx(http.MethodGet, "/v1/profil", "", 9)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
