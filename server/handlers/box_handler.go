package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"cardindex/internal/domain/models"
	"cardindex/matching"
	apperrors "cardindex/server/errors"
	"cardindex/session"
	"cardindex/sheets"
)

// RecordStore интерфейс книги ревью с записями коробок
type RecordStore interface {
	ReadBox(boxNumber string) ([]models.CanonicalRecord, error)
	UpdateRecords(records []models.CanonicalRecord) error
}

// BoxHandler обработчики каноничных записей и выравнивания
type BoxHandler struct {
	store    RecordStore
	matcher  *matching.Matcher
	aligner  *matching.Aligner
	sessions *session.Store
}

// MatchRequest запрос одиночного сопоставления
type MatchRequest struct {
	SessionID string                 `json:"session_id" binding:"required"`
	Record    models.CanonicalRecord `json:"record" binding:"required"`
}

// AlignResponse выровненная таблица коробки
type AlignResponse struct {
	BoxNumber string              `json:"box_number"`
	Rows      []models.AlignedRow `json:"rows"`
	Records   int                 `json:"records"`
	PoolSize  int                 `json:"pool_size"`
}

// NewBoxHandler создает обработчик коробок
func NewBoxHandler(store RecordStore, matcher *matching.Matcher, aligner *matching.Aligner, sessions *session.Store) *BoxHandler {
	return &BoxHandler{
		store:    store,
		matcher:  matcher,
		aligner:  aligner,
		sessions: sessions,
	}
}

// HandleGetBox отдает каноничные записи одной коробки
func (h *BoxHandler) HandleGetBox(c *gin.Context) {
	boxNumber := strings.TrimSpace(c.Param("boxNumber"))
	if boxNumber == "" {
		SendJSONError(c, http.StatusBadRequest, "box number is required")
		return
	}

	records, err := h.store.ReadBox(boxNumber)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to read review workbook", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	if len(records) == 0 {
		SendJSONError(c, http.StatusNotFound, "no patients found for this box number")
		return
	}
	SendJSONResponse(c, http.StatusOK, records)
}

// HandleAlignBox строит выровненную таблицу: записи коробки против
// пула сессии. Таблица пересчитывается на каждый запрос и нигде
// не сохраняется.
func (h *BoxHandler) HandleAlignBox(c *gin.Context) {
	boxNumber := strings.TrimSpace(c.Param("boxNumber"))
	sessionID := c.Query("session_id")
	if sessionID == "" {
		SendJSONError(c, http.StatusBadRequest, "session_id is required")
		return
	}

	records, err := h.store.ReadBox(boxNumber)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to read review workbook", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	if len(records) == 0 {
		SendJSONError(c, http.StatusNotFound, "no patients found for this box number")
		return
	}

	pool := h.sessions.Entries(sessionID)
	rows := h.aligner.AlignTable(records, pool)

	SendJSONResponse(c, http.StatusOK, AlignResponse{
		BoxNumber: boxNumber,
		Rows:      rows,
		Records:   len(records),
		PoolSize:  len(pool),
	})
}

// HandleExportAligned строит выровненную таблицу и отдает ее xlsx-файлом
// для офлайн-ревью
func (h *BoxHandler) HandleExportAligned(c *gin.Context) {
	boxNumber := strings.TrimSpace(c.Param("boxNumber"))
	sessionID := c.Query("session_id")
	if sessionID == "" {
		SendJSONError(c, http.StatusBadRequest, "session_id is required")
		return
	}

	records, err := h.store.ReadBox(boxNumber)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to read review workbook", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	if len(records) == 0 {
		SendJSONError(c, http.StatusNotFound, "no patients found for this box number")
		return
	}

	rows := h.aligner.AlignTable(records, h.sessions.Entries(sessionID))

	// filepath.Base отсекает разделители пути из пользовательского ввода
	tmpFile := filepath.Join(os.TempDir(), filepath.Base(fmt.Sprintf("aligned_%s_%s.xlsx", boxNumber, sessionID)))
	if err := sheets.ExportAligned(tmpFile, rows); err != nil {
		appErr := apperrors.NewInternalError("failed to export aligned table", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	defer os.Remove(tmpFile)

	c.FileAttachment(tmpFile, fmt.Sprintf("aligned_%s.xlsx", boxNumber))
}

// HandleMatchOne сопоставляет одну каноничную запись с пулом сессии
func (h *BoxHandler) HandleMatchOne(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewValidationError("invalid request body", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	pool := h.sessions.Entries(req.SessionID)
	result := h.matcher.MatchOne(req.Record, pool)
	SendJSONResponse(c, http.StatusOK, result)
}

// HandleUpdateRecords сохраняет правленые каноничные записи в книгу ревью
func (h *BoxHandler) HandleUpdateRecords(c *gin.Context) {
	var records []models.CanonicalRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		appErr := apperrors.NewValidationError("invalid request body", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	if len(records) == 0 {
		SendJSONError(c, http.StatusBadRequest, "no patients provided for update")
		return
	}

	if err := h.store.UpdateRecords(records); err != nil {
		if errors.Is(err, sheets.ErrPositionNotFound) {
			SendJSONError(c, http.StatusNotFound, err.Error())
			return
		}
		appErr := apperrors.NewInternalError("failed to update review workbook", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"message": "records updated successfully",
		"count":   len(records),
	})
}
