package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cardindex/normalization"
	apperrors "cardindex/server/errors"
	"cardindex/session"
)

// SessionHandler обработчики пула сессии ревью
type SessionHandler struct {
	sessions   *session.Store
	normalizer *normalization.Normalizer
}

// UpdateEntryRequest правка записи пользователем
type UpdateEntryRequest struct {
	Name string `json:"name"`
	DOB  string `json:"dob"`
}

// NewSessionHandler создает обработчик сессий
func NewSessionHandler(sessions *session.Store, normalizer *normalization.Normalizer) *SessionHandler {
	return &SessionHandler{sessions: sessions, normalizer: normalizer}
}

// HandleGetEntries отдает текущий пул сессии в порядке добавления
func (h *SessionHandler) HandleGetEntries(c *gin.Context) {
	sessionID := c.Param("id")
	entries := h.sessions.Entries(sessionID)
	SendJSONResponse(c, http.StatusOK, gin.H{
		"session_id": sessionID,
		"entries":    entries,
	})
}

// HandleUpdateEntry применяет правку пользователя к записи пула.
// Дата приводится к каноничному формату, если распознается; в остальном
// правленые значения авторитетны и повторно не нормализуются.
func (h *SessionHandler) HandleUpdateEntry(c *gin.Context) {
	sessionID := c.Param("id")
	entryID := c.Param("entryID")

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewValidationError("invalid request body", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	name := strings.TrimSpace(req.Name)
	dob := strings.TrimSpace(req.DOB)
	if name == "" && dob == "" {
		SendJSONError(c, http.StatusBadRequest, "entry must keep at least one of name, dob")
		return
	}

	if dob != "" {
		if normalized := h.normalizer.Dates().Normalize(dob); normalized != "" {
			dob = normalized
		}
	}

	entry, err := h.sessions.UpdateEntry(sessionID, entryID, name, dob)
	if err != nil {
		appErr := apperrors.NewNotFoundError("entry not found", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	SendJSONResponse(c, http.StatusOK, entry)
}

// HandleResetSession очищает пул сессии
func (h *SessionHandler) HandleResetSession(c *gin.Context) {
	sessionID := c.Param("id")
	h.sessions.Reset(sessionID)
	SendJSONResponse(c, http.StatusOK, gin.H{
		"session_id": sessionID,
		"entries":    []struct{}{},
	})
}
