package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardindex/database"
	"cardindex/internal/config"
	"cardindex/internal/domain/models"
	"cardindex/ocrclient"
)

// stubOCR минимальный OCR-коллаборатор для сборки сервера
type stubOCR struct{}

func (stubOCR) ProcessImage(context.Context, string, []byte, ocrclient.TextType) ([]models.RawFragment, error) {
	return nil, nil
}

// stubRecordStore книга ревью с одной коробкой
type stubRecordStore struct{}

func (stubRecordStore) ReadBox(boxNumber string) ([]models.CanonicalRecord, error) {
	if boxNumber != "A1" {
		return nil, nil
	}
	return []models.CanonicalRecord{
		{BoxNumber: "A1", Name: "Ann Creel", DOB: "12/25/1990"},
	}, nil
}

func (stubRecordStore) UpdateRecords([]models.CanonicalRecord) error {
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.GinMode = "test"

	db, err := database.NewPatientsDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := New(cfg, stubOCR{}, stubRecordStore{}, db)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "каждый ответ несет идентификатор запроса")
}

func TestServer_GetBoxThroughFullStack(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/box/A1", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var records []models.CanonicalRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ann Creel", records[0].Name)
}

func TestServer_UnknownBox(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/box/Z9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORSHeaders(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
