package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardindex/internal/domain/models"
)

func TestNormalizer_Pipeline(t *testing.T) {
	n := NewNormalizer()

	fragments := []models.RawFragment{
		{Name: "creel, ann", Confidence: 0.8, SourceImage: "card1.jpg"},
		{DOB: "DOB: 12-25-1990", Confidence: 0.9, SourceImage: "card1.jpg"},
		{Name: "###"}, // мусор, отбрасывается
		{Name: "SMITH, JOHN", DOB: "3/7/52", Confidence: 0.5, SourceImage: "card2.jpg"},
	}
	entries := n.Normalize(fragments)

	require.Len(t, entries, 2)

	assert.Equal(t, "Ann Creel", entries[0].Name)
	assert.Equal(t, "12/25/1990", entries[0].DOB)
	assert.Equal(t, 0.9, entries[0].Confidence)
	assert.NotEmpty(t, entries[0].ID)

	assert.Equal(t, "John Smith", entries[1].Name)
	assert.Equal(t, "03/07/1952", entries[1].DOB)
	assert.NotEmpty(t, entries[1].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestNormalizer_DropsEmptyEntries(t *testing.T) {
	n := NewNormalizer()

	fragments := []models.RawFragment{
		{Name: "119400B"},
		{Name: "006:43033"},
		{},
	}
	entries := n.Normalize(fragments)
	assert.Empty(t, entries)
}

func TestNormalizer_SurvivesOnSingleField(t *testing.T) {
	n := NewNormalizer()

	// Нечитаемая дата не убивает запись с валидным именем
	entries := n.Normalize([]models.RawFragment{
		{Name: "John Smith", DOB: "garbage"},
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "John Smith", entries[0].Name)
	assert.Equal(t, "", entries[0].DOB)

	// И наоборот
	entries = n.Normalize([]models.RawFragment{
		{DOB: "12/25/1990"},
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Name)
	assert.Equal(t, "12/25/1990", entries[0].DOB)
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer()

	fragments := []models.RawFragment{
		{Name: "creel, ann"},
		{DOB: "12-25-1990"},
		{Name: "SMITH, JOHN", DOB: "3/7/52"},
	}
	first := n.Normalize(fragments)

	// Повторная нормализация каноничных записей ничего не меняет
	asFragments := make([]models.RawFragment, len(first))
	for i, e := range first {
		asFragments[i] = models.RawFragment{
			Name:        e.Name,
			DOB:         e.DOB,
			Confidence:  e.Confidence,
			SourceImage: e.SourceImage,
		}
	}
	second := n.Normalize(asFragments)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].DOB, second[i].DOB)
	}
}

func TestNormalizer_MalformedInputDoesNotPanic(t *testing.T) {
	n := NewNormalizer()

	// Кривой вход от коллаборатора разбирается локально, без паник
	fragments := []models.RawFragment{
		{Name: "\x00\x01\x02"},
		{DOB: "��"},
		{Name: "John Smith"},
	}
	entries := n.Normalize(fragments)
	require.Len(t, entries, 1)
	assert.Equal(t, "John Smith", entries[0].Name)
}
