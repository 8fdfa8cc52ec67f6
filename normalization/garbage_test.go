package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGarbageClassifier_KnownArtifacts(t *testing.T) {
	gc := NewGarbageClassifier(NewDateNormalizer())

	// Реальные артефакты OCR с карточек
	garbage := []string{
		"119400B",     // номер с хвостовой буквой
		"006:43033",   // код с двоеточиями
		"12 345 678",  // цифровые группы через пробел
		"3.14159",     // десятичное число
		"42",          // просто число
		"",            // пустая строка
		"   ",         // одни пробелы
		"A",           // короче двух символов
		"---",         // без букв
		"12/25/1990",  // валидная дата именем не является
		"13-06-1977",  // дата с транспозицией тоже
	}
	for _, text := range garbage {
		assert.True(t, gc.IsGarbage(text), "expected garbage: %q", text)
	}
}

func TestGarbageClassifier_ValidNames(t *testing.T) {
	gc := NewGarbageClassifier(NewDateNormalizer())

	names := []string{
		"John Smith",
		"Ann Creel",
		"Cassidy Susanna",
		"O'Brien",
		"McDonald, Ronald",
		"Smith Jr",
	}
	for _, name := range names {
		assert.False(t, gc.IsGarbage(name), "expected valid name: %q", name)
	}
}

func TestGarbageClassifier_LengthBounds(t *testing.T) {
	gc := NewGarbageClassifier(NewDateNormalizer())

	long := make([]byte, 0, 60)
	for i := 0; i < 60; i++ {
		long = append(long, 'a')
	}
	assert.True(t, gc.IsGarbage(string(long)))
	assert.False(t, gc.IsGarbage("Al"))
}

func TestGarbageClassifier_ClassifyReason(t *testing.T) {
	gc := NewGarbageClassifier(NewDateNormalizer())

	assert.Equal(t, "no_letters", gc.Classify("12345"))
	assert.Equal(t, "numeric_code", gc.Classify("119400B"))
	assert.Equal(t, "is_date", gc.Classify("12/25/1990"))
	assert.Equal(t, "", gc.Classify("John Smith"))
}
