package normalization

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"cardindex/internal/domain/models"
)

// Normalizer полный конвейер очистки OCR-фрагментов:
// склейка комбинатором, нормализация имени и даты, отбрасывание записей,
// у которых не осталось ни одного поля. Конвейер чистый и идемпотентный:
// повторная нормализация каноничных записей ничего не меняет.
type Normalizer struct {
	dates    *DateNormalizer
	names    *NameNormalizer
	garbage  *GarbageClassifier
	combiner *Combiner
}

// NewNormalizer создает конвейер нормализации
func NewNormalizer() *Normalizer {
	dates := NewDateNormalizer()
	garbage := NewGarbageClassifier(dates)
	return &Normalizer{
		dates:    dates,
		names:    NewNameNormalizer(garbage),
		garbage:  garbage,
		combiner: NewCombiner(dates, garbage),
	}
}

// Dates отдает нормализатор дат (нужен серверу для правок пользователя)
func (n *Normalizer) Dates() *DateNormalizer { return n.dates }

// Names отдает нормализатор имен
func (n *Normalizer) Names() *NameNormalizer { return n.names }

// Garbage отдает классификатор мусора
func (n *Normalizer) Garbage() *GarbageClassifier { return n.garbage }

// Normalize превращает сырые OCR-фрагменты в нормализованные записи.
// Фрагменты, не несущие ни имени, ни даты, отбрасываются; все остальное
// доживает до сопоставления, каким бы шумным оно ни было.
func (n *Normalizer) Normalize(fragments []models.RawFragment) []models.NormalizedEntry {
	cleaned := make([]models.RawFragment, 0, len(fragments))
	for _, f := range fragments {
		f.Name = cleanText(f.Name)
		f.DOB = cleanText(f.DOB)
		cleaned = append(cleaned, f)
	}

	combined := n.combiner.Combine(cleaned)

	entries := make([]models.NormalizedEntry, 0, len(combined))
	for _, f := range combined {
		entry := models.NormalizedEntry{
			ID:          uuid.New().String(),
			Name:        n.names.Normalize(f.Name),
			DOB:         n.dates.Normalize(f.DOB),
			Confidence:  f.Confidence,
			SourceImage: f.SourceImage,
		}
		if entry.Empty() {
			slog.Debug("фрагмент отброшен как мусор",
				"name", f.Name,
				"dob", f.DOB,
				"source", f.SourceImage,
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// cleanText снимает юникодные артефакты OCR до эвристик:
// NFKC-нормализация и схлопывание пробелов
func cleanText(text string) string {
	text = norm.NFKC.String(text)
	return strings.Join(strings.Fields(text), " ")
}
