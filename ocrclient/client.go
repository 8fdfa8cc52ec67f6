package ocrclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"cardindex/internal/domain/models"
)

// TextType тип текста на карточке для подсказки OCR-движку
type TextType string

const (
	TextPrinted     TextType = "printed"
	TextHandwritten TextType = "handwritten"
)

// Client клиент внешнего OCR-сервиса извлечения текста.
// Сервис принимает изображение карточки и возвращает сырые тройки
// (имя, дата, уверенность) без каких-либо гарантий чистоты.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientConfig конфигурация OCR-клиента
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit rate.Limit
}

// ocrResponse формат ответа OCR-сервиса
type ocrResponse struct {
	Results []ocrResult `json:"results"`
}

// ocrResult одна распознанная строка
type ocrResult struct {
	Name  string   `json:"name"`
	DOB   string   `json:"dob"`
	Score *float64 `json:"score"`
}

// NewClient создает OCR-клиент
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8001"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(time.Second) // 1 изображение в секунду
	}
	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(config.RateLimit, 1),
	}
}

// ProcessImage отправляет изображение на распознавание и возвращает
// сырые фрагменты. Пропущенные или кривые поля в ответе сервиса не
// ошибка: они становятся пустыми строками и разбираются конвейером.
func (c *Client) ProcessImage(ctx context.Context, filename string, imageData []byte, textType TextType) ([]models.RawFragment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/ocr?%s", c.baseURL, url.Values{
		"text_type": {string(textType)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ocr service returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}

	fragments := make([]models.RawFragment, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		fragment := models.RawFragment{
			Name:        r.Name,
			DOB:         r.DOB,
			SourceImage: filename,
		}
		if r.Score != nil {
			fragment.Confidence = clamp01(*r.Score)
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

// clamp01 зажимает уверенность OCR в [0, 1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
