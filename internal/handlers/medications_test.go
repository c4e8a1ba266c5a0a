package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
)

func TestCreateMedicationPriceValidation(t *testing.T) {
	r, db, cfg := newTestServer(t)
	staff := createTestUser(t, db, "admin", models.RolePatient, true)

	// Below the 0.01 minimum fails validation.
	w := doRequest(r, http.MethodPost, "/medicamentos/cadastrar/",
		`{"name":"Dipirona","price":0.00}`, bearerToken(t, cfg, &staff))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Exactly 0.01 is accepted.
	w = doRequest(r, http.MethodPost, "/medicamentos/cadastrar/",
		`{"name":"Dipirona","price":0.01}`, bearerToken(t, cfg, &staff))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var medication models.Medication
	require.NoError(t, db.First(&medication, "name = ?", "Dipirona").Error)
	assert.InDelta(t, 0.01, medication.Price, 1e-9)
	assert.True(t, medication.RequiresPrescription, "prescription flag should default to true")
}

func TestCreateMedicationRequiresStaff(t *testing.T) {
	r, db, cfg := newTestServer(t)
	patient := createTestUser(t, db, "alice", models.RolePatient, false)

	w := doRequest(r, http.MethodPost, "/medicamentos/cadastrar/",
		`{"name":"Dipirona","price":9.90}`, bearerToken(t, cfg, &patient))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/painel/", w.Header().Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Medication{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateMedicationDuplicateName(t *testing.T) {
	r, db, cfg := newTestServer(t)
	staff := createTestUser(t, db, "admin", models.RolePatient, true)

	w := doRequest(r, http.MethodPost, "/medicamentos/cadastrar/",
		`{"name":"Paracetamol","price":12.50,"requiresPrescription":false}`, bearerToken(t, cfg, &staff))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPost, "/medicamentos/cadastrar/",
		`{"name":"Paracetamol","price":15.00}`, bearerToken(t, cfg, &staff))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMedicationsOrderedByName(t *testing.T) {
	r, db, cfg := newTestServer(t)
	patient := createTestUser(t, db, "alice", models.RolePatient, false)

	for _, name := range []string{"Zolpidem", "Amoxicilina", "Ibuprofeno"} {
		require.NoError(t, db.Create(&models.Medication{Name: name, Price: 10.0}).Error)
	}

	w := doRequest(r, http.MethodGet, "/medicamentos/", "", bearerToken(t, cfg, &patient))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Medication `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 3)
	assert.Equal(t, "Amoxicilina", response.Data[0].Name)
	assert.Equal(t, "Ibuprofeno", response.Data[1].Name)
	assert.Equal(t, "Zolpidem", response.Data[2].Name)
}

func TestDeleteMedication(t *testing.T) {
	r, db, cfg := newTestServer(t)
	staff := createTestUser(t, db, "admin", models.RolePatient, true)

	medication := models.Medication{Name: "Dipirona", Price: 5.0}
	require.NoError(t, db.Create(&medication).Error)

	w := doRequest(r, http.MethodPost, "/medicamentos/"+medication.ID+"/excluir/", "", bearerToken(t, cfg, &staff))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Medication{}).Count(&count).Error)
	assert.Zero(t, count)

	// Deleting again reads as not found.
	w = doRequest(r, http.MethodPost, "/medicamentos/"+medication.ID+"/excluir/", "", bearerToken(t, cfg, &staff))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
