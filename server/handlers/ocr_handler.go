package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardindex/internal/domain/models"
	"cardindex/normalization"
	"cardindex/ocrclient"
	apperrors "cardindex/server/errors"
	"cardindex/session"
)

// OCRService интерфейс OCR-коллаборатора.
// Вынесен для подмены в тестах обработчиков.
type OCRService interface {
	ProcessImage(ctx context.Context, filename string, imageData []byte, textType ocrclient.TextType) ([]models.RawFragment, error)
}

// OCRHandler обработчики распознавания изображений карточек
type OCRHandler struct {
	ocr        OCRService
	normalizer *normalization.Normalizer
	sessions   *session.Store
}

// ProcessImageResponse ответ на загрузку изображения
type ProcessImageResponse struct {
	SessionID string                   `json:"session_id"`
	Entries   []models.NormalizedEntry `json:"entries"`
	PoolSize  int                      `json:"pool_size"`
}

// NewOCRHandler создает обработчик OCR
func NewOCRHandler(ocr OCRService, normalizer *normalization.Normalizer, sessions *session.Store) *OCRHandler {
	return &OCRHandler{
		ocr:        ocr,
		normalizer: normalizer,
		sessions:   sessions,
	}
}

// HandleProcessImage принимает изображение карточки, прогоняет его через
// OCR-сервис и конвейер нормализации, дописывает результат в пул сессии.
// Повторная загрузка того же изображения ожидаема: дубликаты разбирает
// этап сопоставления, подтверждение повторной отправки - забота клиента.
func (h *OCRHandler) HandleProcessImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		appErr := apperrors.NewValidationError("file is required", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	textType := ocrclient.TextType(c.DefaultQuery("text_type", string(ocrclient.TextPrinted)))
	if textType != ocrclient.TextPrinted && textType != ocrclient.TextHandwritten {
		SendJSONError(c, http.StatusBadRequest, "text_type must be printed or handwritten")
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = h.sessions.Create()
	}

	file, err := fileHeader.Open()
	if err != nil {
		appErr := apperrors.NewInternalError("failed to open uploaded file", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to read uploaded file", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	fragments, err := h.ocr.ProcessImage(c.Request.Context(), fileHeader.Filename, imageData, textType)
	if err != nil {
		appErr := apperrors.NewBadGatewayError("ocr service unavailable", err)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	entries := h.normalizer.Normalize(fragments)
	if len(entries) == 0 {
		appErr := apperrors.NewUnprocessableError("could not extract valid text from the image", nil)
		SendJSONError(c, appErr.StatusCode(), appErr.UserMessage())
		return
	}

	h.sessions.Append(sessionID, entries)

	SendJSONResponse(c, http.StatusOK, ProcessImageResponse{
		SessionID: sessionID,
		Entries:   entries,
		PoolSize:  len(h.sessions.Entries(sessionID)),
	})
}
