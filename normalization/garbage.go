package normalization

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// garbageRule одно правило отбраковки: предикат плюс машинная причина.
// Правила проверяются по порядку, новые OCR-артефакты добавляются в конец
// списка, а не новыми ветками в коде.
type garbageRule struct {
	reason string
	match  func(text string) bool
}

// GarbageClassifier определяет, может ли сырой фрагмент вообще быть именем.
// Классификатор чистый и дешевый: вызывается много раз на каждую запись
// и нормализатором, и комбинатором.
type GarbageClassifier struct {
	rules []garbageRule
}

var (
	// Числовые и кодовые паттерны, которые OCR регулярно принимает за текст
	allDigitsPattern    = regexp.MustCompile(`^\d+[A-Za-z]{0,2}$`)
	decimalPattern      = regexp.MustCompile(`^\d+[.,]\d+$`)
	spacedDigitsPattern = regexp.MustCompile(`^\d+(?:\s+\d+)+$`)
	colonDigitsPattern  = regexp.MustCompile(`^\d+(?::\d+)+$`)
)

// NewGarbageClassifier создает классификатор с набором правил по умолчанию
func NewGarbageClassifier(dates *DateNormalizer) *GarbageClassifier {
	return &GarbageClassifier{
		rules: []garbageRule{
			{
				reason: "empty",
				match: func(text string) bool {
					return strings.TrimSpace(text) == ""
				},
			},
			{
				reason: "no_letters",
				match: func(text string) bool {
					for _, r := range text {
						if unicode.IsLetter(r) {
							return false
						}
					}
					return true
				},
			},
			{
				reason: "numeric_code",
				match: func(text string) bool {
					t := strings.TrimSpace(text)
					return allDigitsPattern.MatchString(t) ||
						decimalPattern.MatchString(t) ||
						spacedDigitsPattern.MatchString(t) ||
						colonDigitsPattern.MatchString(t)
				},
			},
			{
				reason: "length_bounds",
				match: func(text string) bool {
					n := utf8.RuneCountInString(strings.TrimSpace(text))
					return n < 2 || n > 50
				},
			},
			{
				// Дата никогда не считается именем, даже текстовая
				reason: "is_date",
				match: func(text string) bool {
					return dates.Normalize(text) != ""
				},
			},
		},
	}
}

// IsGarbage сообщает, что текст не может быть именем пациента
func (gc *GarbageClassifier) IsGarbage(text string) bool {
	reason := gc.Classify(text)
	return reason != ""
}

// Classify возвращает причину отбраковки или пустую строку для валидного имени
func (gc *GarbageClassifier) Classify(text string) string {
	for _, rule := range gc.rules {
		if rule.match(text) {
			return rule.reason
		}
	}
	return ""
}
