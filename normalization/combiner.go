package normalization

import (
	"log/slog"
	"regexp"

	"cardindex/internal/domain/models"
)

// Combiner чинит построчную нарезку OCR: склеивает соседние фрагменты,
// когда имя и дата рождения одной карточки разъехались по разным строкам,
// и разрезает одиночные фрагменты, в которые OCR вклеил дату прямо в имя.
// Порядок фрагментов значим - он повторяет порядок чтения карточки.
// Комбинатор никогда не выбрасывает фрагмент, только меняет его форму.
type Combiner struct {
	dates   *DateNormalizer
	garbage *GarbageClassifier
}

var (
	// Дата в свободном тексте: 1-2 цифры, разделитель, 1-2 цифры, опц. год
	embeddedDatePattern = regexp.MustCompile(`\d{1,2}[-/,.]\d{1,2}(?:[-/,.]\d{2,4})?`)
	// Метка DOB, за которой идут цифры
	labeledDigitsPattern = regexp.MustCompile(`(?i)(?:D\.?\s*O\.?\s*B\.?|SOB|OOB|D0B|D08|DOE|DOG|BOB|BOD)[:.\-\s]*\d`)

	// Паттерны извлечения в порядке приоритета
	nameLabelDatePattern = regexp.MustCompile(`(?i)^(.*?)[\s,]*(?:D\.?\s*O\.?\s*B\.?|SOB|OOB|D0B|D08|DOE|DOG|BOB|BOD)[:.\-\s]*(.+)$`)
	nameThenDatePattern  = regexp.MustCompile(`^(.+?)[\s,]+(\d{1,2}[-/,.]\d{1,2}(?:[-/,.]\d{2,4})?)[.\s]*$`)
	dateThenNamePattern  = regexp.MustCompile(`^(\d{1,2}[-/,.]\d{1,2}(?:[-/,.]\d{2,4})?)[\s,]+(.+)$`)
	nameCommaRestPattern = regexp.MustCompile(`^(.+?),\s*(.+)$`)
)

// NewCombiner создает комбинатор фрагментов
func NewCombiner(dates *DateNormalizer, garbage *GarbageClassifier) *Combiner {
	return &Combiner{dates: dates, garbage: garbage}
}

// Combine проходит по фрагментам в порядке чтения и применяет правила
// склейки и разрезания. Результат - кандидаты для полной нормализации.
func (cb *Combiner) Combine(fragments []models.RawFragment) []models.RawFragment {
	out := make([]models.RawFragment, 0, len(fragments))

	for i := 0; i < len(fragments); i++ {
		current := fragments[i]

		if i+1 < len(fragments) {
			next := fragments[i+1]

			// Имя и дата одной карточки разъехались по строкам
			if current.Name != "" && current.DOB == "" && next.Name == "" && next.DOB != "" {
				out = append(out, cb.merge(current, next, next.DOB))
				i++
				continue
			}

			// Следующий фрагмент - дата, по ошибке попавшая в поле имени
			if current.Name != "" && current.DOB == "" && next.DOB == "" &&
				next.Name != "" && cb.dates.Normalize(next.Name) != "" {
				out = append(out, cb.merge(current, next, next.Name))
				i++
				continue
			}
		}

		// Дата вклеена в поле имени одного фрагмента
		if current.DOB == "" && cb.hasEmbeddedDate(current.Name) {
			if name, dob, ok := cb.extract(current.Name); ok {
				current.Name = name
				current.DOB = dob
				out = append(out, current)
				continue
			}
		}

		// Поле имени целиком является датой
		if current.DOB == "" && current.Name != "" {
			if normalized := cb.dates.Normalize(current.Name); normalized != "" {
				current.Name = ""
				current.DOB = normalized
				out = append(out, current)
				continue
			}
		}

		out = append(out, current)
	}

	// Повторный прогон дат: правила выше могли поднять дату,
	// которую до склейки никто не нормализовал
	for i := range out {
		if out[i].DOB != "" {
			out[i].DOB = cb.dates.Normalize(out[i].DOB)
		}
	}

	if len(out) != len(fragments) {
		slog.Debug("фрагменты склеены",
			"input", len(fragments),
			"output", len(out),
		)
	}
	return out
}

// merge склеивает два соседних фрагмента в одну карточку
func (cb *Combiner) merge(current, next models.RawFragment, dob string) models.RawFragment {
	confidence := current.Confidence
	if next.Confidence > confidence {
		confidence = next.Confidence
	}
	return models.RawFragment{
		Name:        current.Name,
		DOB:         dob,
		Confidence:  confidence,
		SourceImage: current.SourceImage,
	}
}

// hasEmbeddedDate сообщает, похоже ли поле имени на смесь имени и даты
func (cb *Combiner) hasEmbeddedDate(name string) bool {
	if name == "" {
		return false
	}
	return embeddedDatePattern.MatchString(name) || labeledDigitsPattern.MatchString(name)
}

// extract пытается разрезать смешанный фрагмент на имя и дату.
// Паттерны пробуются по приоритету, принимается первый, который
// дает не-мусорное имя.
func (cb *Combiner) extract(text string) (name, dob string, ok bool) {
	type candidate struct {
		pattern   *regexp.Regexp
		nameGroup int
		dateGroup int
	}
	candidates := []candidate{
		{nameLabelDatePattern, 1, 2}, // <имя> DOB <дата>
		{nameThenDatePattern, 1, 2},  // <имя> <дата> в конце
		{dateThenNamePattern, 2, 1},  // <дата> <имя> в начале
		{nameCommaRestPattern, 1, 2}, // <имя>, <дата>
	}

	for _, c := range candidates {
		m := c.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candName := m[c.nameGroup]
		candDate := m[c.dateGroup]
		// Имя, состоящее из одной метки DOB, именем не является:
		// такой фрагмент целиком уходит в дату
		stripped, _ := cb.dates.StripLabel(candName)
		if cb.garbage.IsGarbage(stripped) {
			continue
		}
		return candName, candDate, true
	}
	return "", "", false
}
