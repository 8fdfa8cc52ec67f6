package models

// MatchQuality итоговый вердикт сопоставления карточки с каноничной записью
type MatchQuality string

const (
	MatchFull    MatchQuality = "full"    // совпали и имя, и дата рождения
	MatchPartial MatchQuality = "partial" // совпадение по одному ключу или со слабым счетом
	MatchNone    MatchQuality = "none"    // подходящего фрагмента не найдено
)

// MatchPath путь, которым матчер пришел к результату.
// Нужен для выбора полосы качества: пороги для имени и даты разные.
type MatchPath string

const (
	PathBoth         MatchPath = "both"          // имя и дата указывают на один фрагмент
	PathNamePriority MatchPath = "name_priority" // конфликт, выбрано имя
	PathDOBPriority  MatchPath = "dob_priority"  // конфликт, выбрана дата
	PathNameOnly     MatchPath = "name_only"
	PathDOBOnly      MatchPath = "dob_only"
	PathFallback     MatchPath = "fallback" // конфликт, выбран численно лучший ключ
	PathNone         MatchPath = "none"
)

// RawFragment одно OCR-распознавание с карточки, до любой очистки.
// Создается внешним OCR-сервисом и далее неизменяемо.
type RawFragment struct {
	Name        string  `json:"name"`
	DOB         string  `json:"dob"`
	Confidence  float64 `json:"score"`
	SourceImage string  `json:"source_image"`
}

// NormalizedEntry нормализованная пара (имя, дата рождения), полученная
// из одного или двух RawFragment. Инвариант: хотя бы одно из полей
// Name/DOB непустое. ID стабилен в рамках сессии и служит ключом
// для последующих правок пользователя.
type NormalizedEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DOB         string  `json:"dob"` // каноничный формат MM/DD/YYYY или пустая строка
	Confidence  float64 `json:"confidence"`
	SourceImage string  `json:"source_image"`
}

// Empty сообщает, что запись не несет ни имени, ни даты
func (e NormalizedEntry) Empty() bool {
	return e.Name == "" && e.DOB == ""
}

// CanonicalRecord каноничная запись пациента из хранилища коробок.
// Движок сверки никогда не изменяет эти записи, только аннотирует
// результаты сопоставления.
type CanonicalRecord struct {
	Name              string `json:"name"`
	DOB               string `json:"dob"`
	YearJoined        int    `json:"year_joined"`
	LastDOS           int    `json:"last_dos"`
	ShredYear         int    `json:"shred_year"`
	IsChildWhenJoined bool   `json:"is_child_when_joined"`
	BoxNumber         string `json:"box_number"`
}

// MatchResult результат сопоставления одной каноничной записи с пулом
// нормализованных фрагментов. Эфемерен: пересчитывается на каждый запрос
// и никогда не сохраняется.
type MatchResult struct {
	Quality           MatchQuality     `json:"quality"`
	Path              MatchPath        `json:"path"`
	Score             float64          `json:"score"` // 0 = идеальное совпадение
	MatchedEntry      *NormalizedEntry `json:"matched_entry,omitempty"`
	ConfidencePercent float64          `json:"confidence_percent"`
}

// AlignedRow одна строка выровненной таблицы. Строка i соответствует
// каноничной записи с индексом i, пока i меньше числа записей; хвост
// таблицы занимают фрагменты, не нашедшие своей записи.
type AlignedRow struct {
	Entry  *NormalizedEntry `json:"entry,omitempty"` // nil = пустая строка-заглушка
	Match  *MatchResult     `json:"match,omitempty"` // аннотация для строк в пределах каноничного списка
	Record *CanonicalRecord `json:"record,omitempty"`
}

// Filled сообщает, занята ли строка фрагментом
func (r AlignedRow) Filled() bool {
	return r.Entry != nil
}
