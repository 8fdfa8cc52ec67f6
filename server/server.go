package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"cardindex/database"
	"cardindex/internal/config"
	"cardindex/matching"
	"cardindex/normalization"
	"cardindex/ocrclient"
	"cardindex/server/handlers"
	"cardindex/server/middleware"
	"cardindex/session"
)

// Server HTTP-сервер сверки картотеки. Тонкая обвязка вокруг движка:
// вся алгоритмика живет в пакетах normalization и matching.
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	http     *http.Server
	sessions *session.Store
}

// New собирает сервер со всеми зависимостями
func New(cfg *config.Config, ocr handlers.OCRService, store handlers.RecordStore, patientsDB *database.PatientsDB) *Server {
	gin.SetMode(cfg.GinMode)

	normalizer := normalization.NewNormalizer()
	matcher := matching.NewMatcher(cfg.Matching)
	aligner := matching.NewAligner(matcher)
	sessions := session.NewStore(cfg.SessionTTL)

	ocrHandler := handlers.NewOCRHandler(ocr, normalizer, sessions)
	sessionHandler := handlers.NewSessionHandler(sessions, normalizer)
	boxHandler := handlers.NewBoxHandler(store, matcher, aligner, sessions)
	patientsHandler := handlers.NewPatientsHandler(patientsDB)

	engine := gin.New()
	engine.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinRequestIDMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinGzipMiddleware(),
	)

	api := engine.Group("/api")
	{
		api.POST("/ocr/process-image", ocrHandler.HandleProcessImage)

		api.GET("/session/:id/entries", sessionHandler.HandleGetEntries)
		api.PATCH("/session/:id/entries/:entryID", sessionHandler.HandleUpdateEntry)
		api.POST("/session/:id/reset", sessionHandler.HandleResetSession)

		api.POST("/box/:boxNumber", boxHandler.HandleGetBox)
		api.POST("/box/:boxNumber/align", boxHandler.HandleAlignBox)
		api.GET("/box/:boxNumber/align/export", boxHandler.HandleExportAligned)
		api.POST("/match", boxHandler.HandleMatchOne)
		api.POST("/records/update", boxHandler.HandleUpdateRecords)

		api.POST("/patients", patientsHandler.HandleInsertPatient)
		api.GET("/patients/search", patientsHandler.HandleSearchPatients)
		api.GET("/patients/duplicates", patientsHandler.HandleFindDuplicates)

		api.GET("/health", handleHealth)
	}

	return &Server{
		cfg:      cfg,
		engine:   engine,
		sessions: sessions,
		http: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Engine отдает gin-движок (нужен httptest в тестах обработчиков)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run запускает сервер и блокируется до его остановки
func (s *Server) Run() error {
	slog.Info("сервер сверки картотеки запущен", "port", s.cfg.Port)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown мягко останавливает сервер и фоновую уборку сессий
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.Close()
	return s.http.Shutdown(ctx)
}

// handleHealth проверка живости
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// NewOCRClient собирает OCR-клиент из конфигурации
func NewOCRClient(cfg *config.Config) *ocrclient.Client {
	return ocrclient.NewClient(ocrclient.ClientConfig{
		BaseURL:   cfg.OCRServiceURL,
		Timeout:   cfg.OCRTimeout,
		RateLimit: rate.Limit(cfg.OCRRatePerSec),
	})
}
