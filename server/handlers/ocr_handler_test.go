package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardindex/internal/domain/models"
	"cardindex/normalization"
	"cardindex/ocrclient"
	"cardindex/session"
)

// fakeOCR подменяет внешний OCR-сервис в тестах обработчиков
type fakeOCR struct {
	fragments []models.RawFragment
	err       error
	gotType   ocrclient.TextType
}

func (f *fakeOCR) ProcessImage(_ context.Context, _ string, _ []byte, textType ocrclient.TextType) ([]models.RawFragment, error) {
	f.gotType = textType
	return f.fragments, f.err
}

func setupOCRRouter(t *testing.T, ocr *fakeOCR) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := session.NewStore(time.Hour)
	t.Cleanup(sessions.Close)

	handler := NewOCRHandler(ocr, normalization.NewNormalizer(), sessions)
	router := gin.New()
	router.POST("/api/ocr/process-image", handler.HandleProcessImage)
	return router, sessions
}

// imageRequest собирает multipart-запрос с изображением
func imageRequest(t *testing.T, target string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "card_001.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleProcessImage_Success(t *testing.T) {
	ocr := &fakeOCR{fragments: []models.RawFragment{
		{Name: "ann creel", DOB: "12-25-90", Confidence: 0.9},
	}}
	router, sessions := setupOCRRouter(t, ocr)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "/api/ocr/process-image?text_type=handwritten"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ocrclient.TextHandwritten, ocr.gotType)

	var resp ProcessImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Ann Creel", resp.Entries[0].Name)
	assert.Equal(t, "12/25/1990", resp.Entries[0].DOB)
	assert.Equal(t, 1, resp.PoolSize)

	assert.Len(t, sessions.Entries(resp.SessionID), 1)
}

func TestHandleProcessImage_AppendsToExistingSession(t *testing.T) {
	ocr := &fakeOCR{fragments: []models.RawFragment{
		{Name: "Boris Vale", Confidence: 0.8},
	}}
	router, sessions := setupOCRRouter(t, ocr)

	id := sessions.Create()
	sessions.Append(id, []models.NormalizedEntry{{ID: "e0", Name: "Ann Creel"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "/api/ocr/process-image?session_id="+id))

	require.Equal(t, http.StatusOK, w.Code)

	var resp ProcessImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, 2, resp.PoolSize, "пул пополняется, а не замещается")
}

func TestHandleProcessImage_MissingFile(t *testing.T) {
	router, _ := setupOCRRouter(t, &fakeOCR{})

	req := httptest.NewRequest(http.MethodPost, "/api/ocr/process-image", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProcessImage_BadTextType(t *testing.T) {
	router, _ := setupOCRRouter(t, &fakeOCR{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "/api/ocr/process-image?text_type=cursive"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text_type")
}

func TestHandleProcessImage_OCRUnavailable(t *testing.T) {
	ocr := &fakeOCR{err: assert.AnError}
	router, _ := setupOCRRouter(t, ocr)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "/api/ocr/process-image"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleProcessImage_AllGarbage(t *testing.T) {
	ocr := &fakeOCR{fragments: []models.RawFragment{
		{Name: "119400B", Confidence: 0.3},
		{Name: "#$%", Confidence: 0.2},
	}}
	router, _ := setupOCRRouter(t, ocr)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "/api/ocr/process-image"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "could not extract valid text")
}
