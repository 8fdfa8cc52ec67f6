package matching

// Config пороги нечеткого сопоставления. Все значения подобраны
// эмпирически на размеченных коробках и намеренно вынесены в конфигурацию:
// при смене OCR-движка или фонда карточек их нужно перекалибровывать.
type Config struct {
	// Поисковые пороги: результаты с дистанцией выше отбрасываются.
	// Порог по имени мягче: после нормализации формата ошибка в дате
	// дискриминирует сильнее, чем ошибка в имени.
	NameThreshold float64 `json:"name_threshold"`
	DOBThreshold  float64 `json:"dob_threshold"`

	// Разрешение конфликта, когда имя и дата указывают на разные фрагменты
	NamePriorityCutoff float64 `json:"name_priority_cutoff"` // имя побеждает ниже этого счета
	ExcellentDOBCutoff float64 `json:"excellent_dob_cutoff"` // иначе дата побеждает ниже этого

	// Границы качественных полос по пути сопоставления
	FullNameCutoff        float64 `json:"full_name_cutoff"`
	FullDOBCutoff         float64 `json:"full_dob_cutoff"`
	PartialNameCutoff     float64 `json:"partial_name_cutoff"`
	PartialDOBCutoff      float64 `json:"partial_dob_cutoff"`
	PartialFallbackCutoff float64 `json:"partial_fallback_cutoff"`
}

// DefaultConfig возвращает пороги по умолчанию
func DefaultConfig() Config {
	return Config{
		NameThreshold:         0.4,
		DOBThreshold:          0.3,
		NamePriorityCutoff:    0.4,
		ExcellentDOBCutoff:    0.2,
		FullNameCutoff:        0.2,
		FullDOBCutoff:         0.1,
		PartialNameCutoff:     0.4,
		PartialDOBCutoff:      0.3,
		PartialFallbackCutoff: 0.3,
	}
}

// Normalize подставляет значения по умолчанию вместо нулевых порогов
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.NameThreshold <= 0 {
		c.NameThreshold = def.NameThreshold
	}
	if c.DOBThreshold <= 0 {
		c.DOBThreshold = def.DOBThreshold
	}
	if c.NamePriorityCutoff <= 0 {
		c.NamePriorityCutoff = def.NamePriorityCutoff
	}
	if c.ExcellentDOBCutoff <= 0 {
		c.ExcellentDOBCutoff = def.ExcellentDOBCutoff
	}
	if c.FullNameCutoff <= 0 {
		c.FullNameCutoff = def.FullNameCutoff
	}
	if c.FullDOBCutoff <= 0 {
		c.FullDOBCutoff = def.FullDOBCutoff
	}
	if c.PartialNameCutoff <= 0 {
		c.PartialNameCutoff = def.PartialNameCutoff
	}
	if c.PartialDOBCutoff <= 0 {
		c.PartialDOBCutoff = def.PartialDOBCutoff
	}
	if c.PartialFallbackCutoff <= 0 {
		c.PartialFallbackCutoff = def.PartialFallbackCutoff
	}
	return c
}
