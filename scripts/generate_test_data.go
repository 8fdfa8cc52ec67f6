package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"cardindex/database"
	"cardindex/internal/domain/models"
	"cardindex/sheets"
)

// Генератор тестовых данных для ручной проверки сверки:
// наполняет sqlite-архив и книгу ревью фейковыми пациентами и пишет
// JSON с зашумленными OCR-фрагментами тех же людей.

func main() {
	var (
		dataDir = flag.String("dir", filepath.Join("tests", "data"), "директория тестовых данных")
		boxes   = flag.Int("boxes", 5, "число коробок")
		perBox  = flag.Int("per-box", 20, "записей в коробке")
	)
	flag.Parse()

	gofakeit.Seed(0)

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	records := generateRecords(*boxes, *perBox)

	if err := seedWorkbook(filepath.Join(*dataDir, "review.xlsx"), records); err != nil {
		log.Fatalf("Failed to seed workbook: %v", err)
	}
	if err := seedArchive(filepath.Join(*dataDir, "patients.db"), records); err != nil {
		log.Fatalf("Failed to seed patients archive: %v", err)
	}
	if err := writeFragments(filepath.Join(*dataDir, "fragments.json"), records); err != nil {
		log.Fatalf("Failed to write fragments: %v", err)
	}

	fmt.Printf("Generated %d records in %d boxes under %s\n", len(records), *boxes, *dataDir)
}

// generateRecords порождает каноничные записи коробок
func generateRecords(boxes, perBox int) []models.CanonicalRecord {
	records := make([]models.CanonicalRecord, 0, boxes*perBox)
	for b := 1; b <= boxes; b++ {
		box := fmt.Sprintf("A%d", b)
		for i := 0; i < perBox; i++ {
			joined := gofakeit.Number(1960, 2020)
			records = append(records, models.CanonicalRecord{
				BoxNumber: box,
				Name:      gofakeit.Name(),
				DOB: gofakeit.DateRange(
					time.Date(1920, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
				).Format("01/02/2006"),
				YearJoined:        joined,
				LastDOS:           joined + gofakeit.Number(0, 10),
				ShredYear:         joined + gofakeit.Number(10, 30),
				IsChildWhenJoined: gofakeit.Bool(),
			})
		}
	}
	return records
}

// seedWorkbook заполняет книгу ревью записями коробок
func seedWorkbook(path string, records []models.CanonicalRecord) error {
	os.Remove(path)
	store, err := sheets.NewStore(path, "2025 Review")
	if err != nil {
		return err
	}
	return store.AppendRecords(records)
}

// seedArchive наполняет sqlite-архив пациентов
func seedArchive(path string, records []models.CanonicalRecord) error {
	os.Remove(path)
	db, err := database.NewPatientsDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, r := range records {
		lastVisit := fmt.Sprintf("%04d-%02d-%02d", r.LastDOS, gofakeit.Number(1, 12), gofakeit.Number(1, 28))
		if _, err := db.InsertPatient(r.BoxNumber, r.Name, r.DOB, lastVisit); err != nil {
			return err
		}
	}
	return nil
}

// writeFragments пишет зашумленные OCR-фрагменты тех же записей
func writeFragments(path string, records []models.CanonicalRecord) error {
	fragments := make([]models.RawFragment, 0, len(records)*2)
	for i, r := range records {
		image := fmt.Sprintf("card_%03d.jpg", i+1)
		// Часть карточек OCR разрывает на два фрагмента
		if gofakeit.Bool() {
			fragments = append(fragments,
				models.RawFragment{Name: noisyName(r.Name), Confidence: confidence(), SourceImage: image},
				models.RawFragment{DOB: noisyDOB(r.DOB), Confidence: confidence(), SourceImage: image},
			)
			continue
		}
		fragments = append(fragments, models.RawFragment{
			Name:        noisyName(r.Name),
			DOB:         noisyDOB(r.DOB),
			Confidence:  confidence(),
			SourceImage: image,
		})
	}

	data, err := json.MarshalIndent(fragments, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// noisyName имитирует типовой OCR-шум в именах
func noisyName(name string) string {
	switch gofakeit.Number(0, 3) {
	case 0:
		return strings.ToUpper(name)
	case 1:
		return strings.ToLower(name)
	case 2:
		// Перестановка слов, как на карточках "Фамилия Имя"
		words := strings.Fields(name)
		if len(words) == 2 {
			return words[1] + ", " + words[0]
		}
		return name
	default:
		return name
	}
}

// noisyDOB имитирует искажения меток и разделителей дат
func noisyDOB(dob string) string {
	switch gofakeit.Number(0, 3) {
	case 0:
		return "DOB: " + dob
	case 1:
		return "SOB " + strings.ReplaceAll(dob, "/", "-")
	case 2:
		return strings.ReplaceAll(dob, "/", "-")
	default:
		return dob
	}
}

func confidence() float64 {
	return gofakeit.Float64Range(0.4, 0.99)
}
