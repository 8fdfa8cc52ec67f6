package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// Validate проверяет согласованность конфигурации перед запуском.
// Кривые пороги сопоставления тихо ломают качество вердиктов,
// поэтому проверяются так же строго, как адреса и пути.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", c.Port)
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.WorkbookPath == "" {
		return fmt.Errorf("workbook_path must not be empty")
	}
	if c.WorkbookSheet == "" {
		return fmt.Errorf("workbook_sheet must not be empty")
	}

	if _, err := url.ParseRequestURI(c.OCRServiceURL); err != nil {
		return fmt.Errorf("invalid ocr_service_url: %w", err)
	}
	if c.OCRTimeout <= 0 {
		return fmt.Errorf("ocr timeout must be positive")
	}
	if c.OCRRatePerSec <= 0 {
		return fmt.Errorf("ocr rate must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	for name, v := range map[string]float64{
		"name_threshold":          c.Matching.NameThreshold,
		"dob_threshold":           c.Matching.DOBThreshold,
		"name_priority_cutoff":    c.Matching.NamePriorityCutoff,
		"excellent_dob_cutoff":    c.Matching.ExcellentDOBCutoff,
		"full_name_cutoff":        c.Matching.FullNameCutoff,
		"full_dob_cutoff":         c.Matching.FullDOBCutoff,
		"partial_name_cutoff":     c.Matching.PartialNameCutoff,
		"partial_dob_cutoff":      c.Matching.PartialDOBCutoff,
		"partial_fallback_cutoff": c.Matching.PartialFallbackCutoff,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("matching threshold %s out of range (0, 1]: %g", name, v)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}
