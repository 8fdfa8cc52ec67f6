package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardindex/database"
)

func setupPatientsRouter(t *testing.T) (*gin.Engine, *database.PatientsDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewPatientsDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handler := NewPatientsHandler(db)
	router := gin.New()
	router.POST("/api/patients", handler.HandleInsertPatient)
	router.GET("/api/patients/search", handler.HandleSearchPatients)
	router.GET("/api/patients/duplicates", handler.HandleFindDuplicates)
	return router, db
}

func insertPatient(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleInsertPatient(t *testing.T) {
	router, _ := setupPatientsRouter(t)

	w := insertPatient(t, router, `{"box_number": "A1", "name": "Ann Creel", "dob": "12/25/1990", "last_visit": "2999-01-01"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Outcome database.InsertOutcome `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, database.InsertedNew, resp.Outcome)

	// Повторная вставка той же записи
	w = insertPatient(t, router, `{"box_number": "A1", "name": "Ann Creel", "dob": "12/25/1990", "last_visit": "2999-01-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, database.AlreadyExists, resp.Outcome)
}

func TestHandleInsertPatient_MissingFields(t *testing.T) {
	router, _ := setupPatientsRouter(t)

	w := insertPatient(t, router, `{"box_number": "A1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSearchPatients(t *testing.T) {
	router, db := setupPatientsRouter(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", "2999-01-01")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patients/search?name=Creel", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var patients []database.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patients))
	require.Len(t, patients, 1)
	assert.Equal(t, "Ann Creel", patients[0].Name)
}

func TestHandleSearchPatients_MissingName(t *testing.T) {
	router, _ := setupPatientsRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patients/search", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFindDuplicates(t *testing.T) {
	router, db := setupPatientsRouter(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", "2999-01-01")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patients/duplicates?name=Ann+Creel", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Name       string             `json:"name"`
		Duplicates []database.Patient `json:"duplicates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Ann Creel", resp.Name)
	assert.Empty(t, resp.Duplicates)
}
