package normalization

import (
	"strings"
	"unicode"
)

// NameNormalizer приводит сырые строки имен к каноничному виду.
// Отбраковка делегируется GarbageClassifier: пустой результат означает
// "это не имя", а не ошибку.
type NameNormalizer struct {
	garbage *GarbageClassifier
}

// Слова, которые пишутся с фиксированным регистром независимо от позиции
var fixedCaseWords = map[string]string{
	"mr":  "Mr",
	"mrs": "Mrs",
	"ms":  "Ms",
	"dr":  "Dr",
	"jr":  "Jr",
	"sr":  "Sr",
	"ii":  "II",
	"iii": "III",
	"iv":  "IV",
}

// NewNameNormalizer создает нормализатор имен
func NewNameNormalizer(garbage *GarbageClassifier) *NameNormalizer {
	return &NameNormalizer{garbage: garbage}
}

// Normalize очищает сырую строку имени.
// Возвращает пустую строку, если строка не является именем.
func (nn *NameNormalizer) Normalize(raw string) string {
	text := strings.Join(strings.Fields(raw), " ")
	text = strings.Trim(text, " .,;")

	if nn.garbage.IsGarbage(text) {
		return ""
	}

	// Формат картотеки "Last, First" разворачивается в "First Last"
	if idx := strings.Index(text, ","); idx >= 0 {
		parts := strings.SplitN(text, ",", 2)
		last := strings.TrimSpace(parts[0])
		first := strings.TrimSpace(parts[1])
		if last != "" && first != "" {
			text = first + " " + last
		} else {
			text = strings.TrimSpace(last + " " + first)
		}
	}

	words := strings.Fields(text)
	for i, word := range words {
		words[i] = titleCaseWord(word)
	}
	return strings.Join(words, " ")
}

// titleCaseWord приводит одно слово имени к титульному регистру
// с учетом картотечных особых случаев: Mc/Mac, апострофы, суффиксы
func titleCaseWord(word string) string {
	lower := strings.ToLower(word)
	// Типографский апостроф из OCR сводится к обычному
	lower = strings.ReplaceAll(lower, "’", "'")

	if fixed, ok := fixedCaseWords[strings.Trim(lower, ".")]; ok {
		return fixed
	}

	// Частицы Mc и Mac сохраняют вторую заглавную: McDonald, MacGregor
	if strings.HasPrefix(lower, "mc") && len(lower) > 2 {
		return "Mc" + capitalize(lower[2:])
	}
	if strings.HasPrefix(lower, "mac") && len(lower) > 4 {
		return "Mac" + capitalize(lower[3:])
	}

	// Апостроф начинает новую заглавную: O'Brien, D'Angelo
	if idx := strings.IndexByte(lower, '\''); idx > 0 && idx < len(lower)-1 {
		head := capitalize(lower[:idx])
		tail := capitalize(lower[idx+1:])
		return head + "'" + tail
	}

	return capitalize(lower)
}

// capitalize поднимает первую букву слова
func capitalize(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
