package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"cardindex/matching"
)

// Config конфигурация сервера сверки картотеки
type Config struct {
	// Сервер
	Port    string `json:"port"`
	GinMode string `json:"gin_mode"`

	// Хранилища
	DatabasePath  string `json:"database_path"`  // sqlite-архив пациентов
	WorkbookPath  string `json:"workbook_path"`  // книга ревью с записями коробок
	WorkbookSheet string `json:"workbook_sheet"` // лист книги ревью

	// OCR-сервис
	OCRServiceURL string        `json:"ocr_service_url"`
	OCRTimeout    time.Duration `json:"-"`
	OCRRatePerSec float64       `json:"ocr_rate_per_sec"`

	// Сессии ревью
	SessionTTL time.Duration `json:"-"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Пороги сопоставления (эмпирические, перекалибровываются под фонд)
	Matching matching.Config `json:"matching"`
}

// configJSON промежуточная форма для полей-длительностей
type configJSON struct {
	Config
	OCRTimeout string `json:"ocr_timeout"`
	SessionTTL string `json:"session_ttl"`
}

// LoadConfig загружает конфигурацию: JSON-файл, если путь задан,
// поверх него переменные окружения
func LoadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var cfgJSON configJSON
		if err := json.Unmarshal(data, &cfgJSON); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applyJSON(config, &cfgJSON)
		log.Printf("Config loaded from %s", path)
	}

	applyEnv(config)
	config.Matching = config.Matching.Normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// defaultConfig значения по умолчанию
func defaultConfig() *Config {
	return &Config{
		Port:          "9090",
		GinMode:       "release",
		DatabasePath:  "patients.db",
		WorkbookPath:  "review.xlsx",
		WorkbookSheet: "2025 Review",
		OCRServiceURL: "http://localhost:8001",
		OCRTimeout:    30 * time.Second,
		OCRRatePerSec: 1,
		SessionTTL:    2 * time.Hour,
		LogLevel:      "info",
		Matching:      matching.DefaultConfig(),
	}
}

// applyJSON накладывает значения из файла поверх дефолтов
func applyJSON(config *Config, cfgJSON *configJSON) {
	if cfgJSON.Config.Port != "" {
		config.Port = cfgJSON.Config.Port
	}
	if cfgJSON.Config.GinMode != "" {
		config.GinMode = cfgJSON.Config.GinMode
	}
	if cfgJSON.Config.DatabasePath != "" {
		config.DatabasePath = cfgJSON.Config.DatabasePath
	}
	if cfgJSON.Config.WorkbookPath != "" {
		config.WorkbookPath = cfgJSON.Config.WorkbookPath
	}
	if cfgJSON.Config.WorkbookSheet != "" {
		config.WorkbookSheet = cfgJSON.Config.WorkbookSheet
	}
	if cfgJSON.Config.OCRServiceURL != "" {
		config.OCRServiceURL = cfgJSON.Config.OCRServiceURL
	}
	if cfgJSON.Config.OCRRatePerSec > 0 {
		config.OCRRatePerSec = cfgJSON.Config.OCRRatePerSec
	}
	if cfgJSON.Config.LogLevel != "" {
		config.LogLevel = cfgJSON.Config.LogLevel
	}
	config.Matching = cfgJSON.Config.Matching

	if cfgJSON.OCRTimeout != "" {
		if d, err := time.ParseDuration(cfgJSON.OCRTimeout); err == nil {
			config.OCRTimeout = d
		} else {
			log.Printf("Invalid ocr_timeout %q, keeping %s", cfgJSON.OCRTimeout, config.OCRTimeout)
		}
	}
	if cfgJSON.SessionTTL != "" {
		if d, err := time.ParseDuration(cfgJSON.SessionTTL); err == nil {
			config.SessionTTL = d
		} else {
			log.Printf("Invalid session_ttl %q, keeping %s", cfgJSON.SessionTTL, config.SessionTTL)
		}
	}
}

// applyEnv накладывает переменные окружения поверх файла
func applyEnv(config *Config) {
	config.Port = getEnv("SERVER_PORT", config.Port)
	config.GinMode = getEnv("GIN_MODE", config.GinMode)
	config.DatabasePath = getEnv("DATABASE_PATH", config.DatabasePath)
	config.WorkbookPath = getEnv("WORKBOOK_PATH", config.WorkbookPath)
	config.WorkbookSheet = getEnv("WORKBOOK_SHEET", config.WorkbookSheet)
	config.OCRServiceURL = getEnv("OCR_SERVICE_URL", config.OCRServiceURL)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	if v := os.Getenv("OCR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.OCRTimeout = d
		}
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionTTL = d
		}
	}
	if v := os.Getenv("OCR_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			config.OCRRatePerSec = f
		}
	}
}

// getEnv возвращает переменную окружения или значение по умолчанию
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
