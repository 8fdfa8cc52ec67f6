package normalization

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// stripRule одно правило очистки даты: паттерн и замена.
// Таблица упорядочена, новые варианты распознанных меток добавляются
// строками таблицы, а не новыми ветками.
type stripRule struct {
	pattern *regexp.Regexp
	replace string
}

// DateNormalizer приводит сырые строки к каноничному формату MM/DD/YYYY.
// Любой сбой валидации означает "даты нет" (пустая строка), а не ошибку:
// вызывающий код трактует это как отсутствие поля.
type DateNormalizer struct {
	labelRules []stripRule
	denyRules  []*regexp.Regexp
}

var (
	// Каноничная форма: 1-2 цифры / 1-2 цифры / 2-4 цифры
	fullDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
	// Слитный цифровой блок после метки DOB: MMDDYY или MMDDYYYY
	digitRunPattern = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2}|\d{4})$`)
	trailingPunct   = regexp.MustCompile(`[\s.,;:!\-/]+$`)
	leadingPunct    = regexp.MustCompile(`^[\s.,;:!\-/]+`)
)

// NewDateNormalizer создает нормализатор дат с таблицей правил по умолчанию
func NewDateNormalizer() *DateNormalizer {
	return &DateNormalizer{
		labelRules: []stripRule{
			// Раздельные и пунктуированные формы "date of birth"
			{regexp.MustCompile(`(?i)date\s*[.\-]?\s*of\s*[.\-]?\s*birth`), ""},
			// D.O.B. с произвольной пунктуацией
			{regexp.MustCompile(`(?i)\bD\s*[.\-]?\s*O\s*[.\-]?\s*B\b\.?`), ""},
			// Типовые OCR-искажения метки DOB
			{regexp.MustCompile(`(?i)\b(?:SOB|OOB|D0B|D08|DOE|DOG|BOB|BOD)\b`), ""},
		},
		denyRules: []*regexp.Regexp{
			// Хвосты месяцев ("January" -> "ary") - известный ложный позитив OCR
			regexp.MustCompile(`(?i)l?ary$`),
		},
	}
}

// ContainsLabel сообщает, есть ли в тексте метка DOB в любом из известных
// написаний. Используется комбинатором для поиска вклеенных дат.
func (dn *DateNormalizer) ContainsLabel(text string) bool {
	for _, rule := range dn.labelRules {
		if rule.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// StripLabel удаляет все варианты метки DOB и обрамляющую пунктуацию
func (dn *DateNormalizer) StripLabel(text string) (string, bool) {
	stripped := text
	for _, rule := range dn.labelRules {
		stripped = rule.pattern.ReplaceAllString(stripped, rule.replace)
	}
	hadLabel := stripped != text
	stripped = leadingPunct.ReplaceAllString(stripped, "")
	stripped = trailingPunct.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped), hadLabel
}

// Normalize приводит сырую строку к виду MM/DD/YYYY.
// Возвращает пустую строку, если строка не является валидной датой.
func (dn *DateNormalizer) Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	text, hadLabel := dn.StripLabel(text)

	// Слишком короткие обрезки после снятия метки не восстановимы
	if len(text) < 5 {
		return ""
	}

	for _, deny := range dn.denyRules {
		if deny.MatchString(text) {
			return ""
		}
	}

	// Запятые и дефисы - те же разделители, искаженные рукописным вводом
	text = strings.ReplaceAll(text, ",", "/")
	text = strings.ReplaceAll(text, "-", "/")
	text = strings.ReplaceAll(text, " ", "")

	var month, day, year int
	var hasYear bool

	if m := fullDatePattern.FindStringSubmatch(text); m != nil {
		month, _ = strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			hasYear = len(m[3]) == 4
			if len(m[3]) == 2 {
				year = expandYear(year)
				hasYear = true
			} else if len(m[3]) == 3 {
				// Трехзначный год не восстановим однозначно
				return ""
			}
		}
	} else if hadLabel {
		m := digitRunPattern.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		month, _ = strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year = expandYear(year)
		}
		hasYear = true
	} else {
		return ""
	}

	// Частая OCR-транспозиция: месяц и день переставлены местами
	if month > 12 && day <= 12 {
		month, day = day, month
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	if !hasYear || year < 1900 || year > 2030 {
		return ""
	}

	return fmt.Sprintf("%02d/%02d/%04d", month, day, year)
}

// expandYear разворачивает двухзначный год: значения больше 30
// относятся к двадцатому веку, остальные к двадцать первому
func expandYear(year int) int {
	if year > 30 {
		return 1900 + year
	}
	return 2000 + year
}
