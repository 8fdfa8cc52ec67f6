package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardindex/database"
	"cardindex/internal/config"
	"cardindex/server"
	"cardindex/sheets"
)

func main() {
	configPath := flag.String("config", "", "путь к JSON-файлу конфигурации")
	flag.Parse()

	log.Println("Запуск сервера сверки картотеки...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	setupLogger(cfg.LogLevel)

	// Архив пациентов
	patientsDB, err := database.NewPatientsDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Ошибка открытия архива пациентов: %v", err)
	}
	defer patientsDB.Close()
	log.Printf("Используется архив пациентов: %s", cfg.DatabasePath)

	// Книга ревью с записями коробок
	workbook, err := sheets.NewStore(cfg.WorkbookPath, cfg.WorkbookSheet)
	if err != nil {
		log.Fatalf("Ошибка открытия книги ревью: %v", err)
	}
	log.Printf("Используется книга ревью: %s [%s]", cfg.WorkbookPath, cfg.WorkbookSheet)

	// Внешний OCR-сервис
	ocr := server.NewOCRClient(cfg)

	srv := server.New(cfg, ocr, workbook, patientsDB)

	// Мягкая остановка по сигналу
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("получен сигнал остановки")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("ошибка остановки сервера", "error", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Fatalf("Ошибка сервера: %v", err)
	}
	<-done
}

// setupLogger настраивает глобальный slog по уровню из конфигурации
func setupLogger(level string) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
