package matching

import (
	"log/slog"
	"sort"

	"cardindex/internal/domain/models"
)

// Aligner раскладывает пул фрагментов по строкам таблицы коробки:
// одна строка на каноничную запись, один фрагмент не более чем в одной
// строке. Конфликты разрешаются детерминированно рангом результата,
// проигравшая сторона остается пустой и видна ревьюеру. Лишние фрагменты
// не теряются - они занимают свободные строки или расширяют таблицу.
type Aligner struct {
	matcher *Matcher
}

// rankedMatch результат сопоставления, привязанный к строке таблицы
type rankedMatch struct {
	recordIndex int
	result      models.MatchResult
}

// NewAligner создает выравниватель поверх матчера
func NewAligner(matcher *Matcher) *Aligner {
	return &Aligner{matcher: matcher}
}

// AlignTable строит выровненную таблицу: строка i соответствует каноничной
// записи i, хвост занимают фрагменты без своей записи. Гарантии:
// ни один фрагмент не попадает в две строки, длина результата не меньше
// числа каноничных записей, ни один фрагмент не отбрасывается молча.
func (a *Aligner) AlignTable(records []models.CanonicalRecord, pool []models.NormalizedEntry) []models.AlignedRow {
	rows := make([]models.AlignedRow, len(records))
	for i := range records {
		rows[i].Record = &records[i]
	}

	// Независимое сопоставление каждой записи
	ranked := make([]rankedMatch, 0, len(records))
	for i, record := range records {
		result := a.matcher.MatchOne(record, pool)
		if result.Quality == models.MatchNone || result.MatchedEntry == nil {
			continue
		}
		ranked = append(ranked, rankedMatch{recordIndex: i, result: result})
	}

	// Ранжирование: качество по убыванию, затем счет по возрастанию.
	// Стабильная сортировка сохраняет порядок записей при равенстве.
	sort.SliceStable(ranked, func(i, j int) bool {
		qi := qualityRank(ranked[i].result.Quality)
		qj := qualityRank(ranked[j].result.Quality)
		if qi != qj {
			return qi < qj
		}
		return ranked[i].result.Score < ranked[j].result.Score
	})

	// Жадное назначение: фрагмент достается лучшей по рангу строке,
	// повторная претензия фиксируется как конфликт
	assigned := make(map[string]bool, len(ranked))
	conflicts := 0
	for _, rm := range ranked {
		entryID := rm.result.MatchedEntry.ID
		if assigned[entryID] {
			conflicts++
			slog.Debug("конфликт назначения, строка остается пустой",
				"row", rm.recordIndex,
				"entry_id", entryID,
			)
			continue
		}
		assigned[entryID] = true
		result := rm.result
		rows[rm.recordIndex].Entry = result.MatchedEntry
		rows[rm.recordIndex].Match = &result
	}

	// Невостребованные фрагменты в исходном порядке занимают пустые
	// строки, при нехватке места таблица расширяется
	nextEmpty := 0
	for i := range pool {
		if assigned[pool[i].ID] {
			continue
		}
		entry := pool[i]
		for nextEmpty < len(records) && rows[nextEmpty].Filled() {
			nextEmpty++
		}
		if nextEmpty < len(records) {
			rows[nextEmpty].Entry = &entry
			nextEmpty++
			continue
		}
		rows = append(rows, models.AlignedRow{Entry: &entry})
	}

	if conflicts > 0 {
		slog.Info("выравнивание завершено с конфликтами",
			"records", len(records),
			"pool", len(pool),
			"conflicts", conflicts,
		)
	}
	return rows
}

// qualityRank порядок качественных полос для ранжирования
func qualityRank(q models.MatchQuality) int {
	switch q {
	case models.MatchFull:
		return 0
	case models.MatchPartial:
		return 1
	default:
		return 2
	}
}
