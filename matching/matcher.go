package matching

import (
	"log/slog"
	"strings"

	"cardindex/internal/domain/models"
)

// Matcher сопоставляет каноничные записи коробки с пулом нормализованных
// OCR-фрагментов. Два независимых нечетких поиска - по имени и по дате
// рождения - дают кандидатов, политика разрешения сводит их к одному
// вердикту. Матчер не хранит состояния между вызовами.
type Matcher struct {
	cfg Config
}

// keyMatch лучший кандидат одного поискового ключа
type keyMatch struct {
	index int     // индекс фрагмента в пуле
	score float64 // дистанция, 0 = идеал
	found bool
}

// NewMatcher создает матчер с заданными порогами
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg.Normalize()}
}

// MatchOne сопоставляет одну каноничную запись с пулом фрагментов.
// Результат эфемерен и пересчитывается на каждый запрос.
func (m *Matcher) MatchOne(record models.CanonicalRecord, pool []models.NormalizedEntry) models.MatchResult {
	nameMatch := m.searchByName(record.Name, pool)
	dobMatch := m.searchByDOB(record.DOB, pool)

	result := m.resolve(nameMatch, dobMatch, pool)

	slog.Debug("запись сопоставлена",
		"record", record.Name,
		"quality", result.Quality,
		"path", result.Path,
		"score", result.Score,
	)
	return result
}

// searchByName находит фрагмент с минимальной дистанцией по имени.
// Для каждой записи перебираются вариации порядка слов: OCR и сами
// карточки путают "Имя Фамилия" и "Фамилия Имя", а в трехсловных именах
// среднее имя часто отсутствует на одной из сторон.
func (m *Matcher) searchByName(recordName string, pool []models.NormalizedEntry) keyMatch {
	if strings.TrimSpace(recordName) == "" {
		return keyMatch{}
	}
	variations := nameVariations(recordName)

	best := keyMatch{score: 1.0}
	for i, entry := range pool {
		if entry.Name == "" {
			continue
		}
		for _, v := range variations {
			score := Distance(v, entry.Name)
			if score < best.score {
				best = keyMatch{index: i, score: score, found: true}
			}
		}
	}
	if !best.found || best.score > m.cfg.NameThreshold {
		return keyMatch{}
	}
	return best
}

// searchByDOB находит фрагмент с минимальной дистанцией по дате рождения
func (m *Matcher) searchByDOB(recordDOB string, pool []models.NormalizedEntry) keyMatch {
	if strings.TrimSpace(recordDOB) == "" {
		return keyMatch{}
	}

	best := keyMatch{score: 1.0}
	for i, entry := range pool {
		if entry.DOB == "" {
			continue
		}
		score := Distance(recordDOB, entry.DOB)
		if score < best.score {
			best = keyMatch{index: i, score: score, found: true}
		}
	}
	if !best.found || best.score > m.cfg.DOBThreshold {
		return keyMatch{}
	}
	return best
}

// resolve сводит результаты двух ключей к одному вердикту.
// Порядок правил фиксирован: оба ключа на одном фрагменте - сильнейшее
// свидетельство; при конфликте имя приоритетнее, если оно достаточно
// уверенное, затем отличная дата, затем численно лучший из двух.
func (m *Matcher) resolve(nameMatch, dobMatch keyMatch, pool []models.NormalizedEntry) models.MatchResult {
	switch {
	case nameMatch.found && dobMatch.found && nameMatch.index == dobMatch.index:
		score := nameMatch.score
		if dobMatch.score < score {
			score = dobMatch.score
		}
		return m.verdict(models.PathBoth, score, &pool[nameMatch.index])

	case nameMatch.found && dobMatch.found:
		if nameMatch.score < m.cfg.NamePriorityCutoff {
			return m.verdict(models.PathNamePriority, nameMatch.score, &pool[nameMatch.index])
		}
		if dobMatch.score < m.cfg.ExcellentDOBCutoff {
			return m.verdict(models.PathDOBPriority, dobMatch.score, &pool[dobMatch.index])
		}
		if dobMatch.score < nameMatch.score {
			return m.verdict(models.PathFallback, dobMatch.score, &pool[dobMatch.index])
		}
		return m.verdict(models.PathFallback, nameMatch.score, &pool[nameMatch.index])

	case nameMatch.found:
		return m.verdict(models.PathNameOnly, nameMatch.score, &pool[nameMatch.index])

	case dobMatch.found:
		return m.verdict(models.PathDOBOnly, dobMatch.score, &pool[dobMatch.index])

	default:
		return models.MatchResult{
			Quality: models.MatchNone,
			Path:    models.PathNone,
			Score:   1.0,
		}
	}
}

// verdict собирает итоговый результат с качественной полосой
func (m *Matcher) verdict(path models.MatchPath, score float64, entry *models.NormalizedEntry) models.MatchResult {
	matched := *entry
	return models.MatchResult{
		Quality:           m.band(path, score),
		Path:              path,
		Score:             score,
		MatchedEntry:      &matched,
		ConfidencePercent: confidencePercent(score),
	}
}

// band переводит счет и путь сопоставления в качественную полосу
func (m *Matcher) band(path models.MatchPath, score float64) models.MatchQuality {
	switch path {
	case models.PathBoth:
		return models.MatchFull
	case models.PathNameOnly, models.PathNamePriority:
		if score < m.cfg.FullNameCutoff {
			return models.MatchFull
		}
		if score < m.cfg.PartialNameCutoff {
			return models.MatchPartial
		}
	case models.PathDOBOnly, models.PathDOBPriority:
		if score < m.cfg.FullDOBCutoff {
			return models.MatchFull
		}
		if score < m.cfg.PartialDOBCutoff {
			return models.MatchPartial
		}
	case models.PathFallback:
		if score < m.cfg.PartialFallbackCutoff {
			return models.MatchPartial
		}
	}
	return models.MatchNone
}

// confidencePercent переводит дистанцию в процент уверенности для ревью
func confidencePercent(score float64) float64 {
	percent := (1.0 - score) * 100.0
	if percent < 0 {
		return 0
	}
	return percent
}

// nameVariations порождает вариации порядка слов для поиска по имени:
// прямой порядок, обратный, а для имен из трех и более слов -
// свертку "первое+последнее" в обоих порядках.
func nameVariations(name string) []string {
	words := strings.Fields(name)
	variations := []string{name}

	if len(words) >= 2 {
		reversed := make([]string, len(words))
		for i, w := range words {
			reversed[len(words)-1-i] = w
		}
		variations = append(variations, strings.Join(reversed, " "))
	}

	if len(words) >= 3 {
		first := words[0]
		last := words[len(words)-1]
		variations = append(variations, first+" "+last, last+" "+first)
	}

	return variations
}
