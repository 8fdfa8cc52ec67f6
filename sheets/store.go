package sheets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"cardindex/internal/domain/models"
)

// Store книга ревью с каноничными записями коробок. Колонки листа:
// A=box_number, B=name, C=dob, D=year_joined, E=last_dos, F=shred_year,
// G=is_child_when_joined; первая строка - заголовок. Строки адресуются
// парой (номер коробки, позиция внутри коробки) - порядок строк листа
// авторитетен и при обновлении не меняется.
// ErrPositionNotFound адрес (коробка, позиция) отсутствует в книге
var ErrPositionNotFound = errors.New("position not found in sheet")

type Store struct {
	mu    sync.Mutex
	path  string
	sheet string
}

// NewStore открывает книгу ревью, при отсутствии создает пустую с заголовком
func NewStore(path, sheet string) (*Store, error) {
	s := &Store{path: path, sheet: sheet}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.createEmpty(); err != nil {
			return nil, err
		}
		slog.Info("создана пустая книга ревью", "path", path, "sheet", sheet)
	}
	return s, nil
}

// createEmpty создает книгу с одним листом и строкой заголовка
func (s *Store) createEmpty() error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	headers := []string{
		"Box", "Name", "DOB", "Year Joined", "Last DOS", "Shred Year", "Child When Joined",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(s.sheet, cell, header)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// ReadBox возвращает каноничные записи одной коробки в порядке строк листа.
// Кривые строки пропускаются с предупреждением, а не валят чтение.
func (s *Store) ReadBox(boxNumber string) ([]models.CanonicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	var records []models.CanonicalRecord
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // заголовок и пустые строки
		}
		sheetBox := strings.TrimSpace(row[0])
		if !strings.EqualFold(sheetBox, boxNumber) {
			continue
		}
		record, err := parseRecord(row)
		if err != nil {
			slog.Warn("строка книги ревью пропущена",
				"row", i+1,
				"error", err,
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// UpdateRecords переписывает строки книги по адресу (коробка, позиция).
// Позиция записи в запросе должна существовать в книге: новые строки
// этим путем не создаются, схема листа не наша зона ответственности.
func (s *Store) UpdateRecords(records []models.CanonicalRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no records provided for update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
	}

	// Адресация как в исходной книге: (коробка, позиция внутри коробки)
	rowLookup := make(map[string]map[int]int) // box -> позиция -> номер строки листа
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		box := strings.ToUpper(strings.TrimSpace(row[0]))
		if rowLookup[box] == nil {
			rowLookup[box] = make(map[int]int)
		}
		pos := len(rowLookup[box])
		rowLookup[box][pos] = i + 1 // 1-based номер строки листа
	}

	positions := make(map[string]int)
	for _, record := range records {
		box := strings.ToUpper(strings.TrimSpace(record.BoxNumber))
		pos := positions[box]
		positions[box] = pos + 1

		rowNum, ok := rowLookup[box][pos]
		if !ok {
			return fmt.Errorf("position %d in box %s: %w", pos, record.BoxNumber, ErrPositionNotFound)
		}

		values := []interface{}{
			record.BoxNumber,
			record.Name,
			record.DOB,
			record.YearJoined,
			record.LastDOS,
			record.ShredYear,
			nil,
		}
		if record.IsChildWhenJoined {
			values[6] = true
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellValue(s.sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
		slog.Info("запись книги обновлена",
			"box", record.BoxNumber,
			"position", pos,
			"row", rowNum,
			"name", record.Name,
		)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// AppendRecords дописывает записи новыми строками в конец листа.
// В отличие от UpdateRecords позиции не проверяются: так наполняются
// новые коробки.
func (s *Store) AppendRecords(records []models.CanonicalRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
	}

	next := len(rows) + 1
	for _, record := range records {
		values := []interface{}{
			record.BoxNumber,
			record.Name,
			record.DOB,
			record.YearJoined,
			record.LastDOS,
			record.ShredYear,
			nil,
		}
		if record.IsChildWhenJoined {
			values[6] = true
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, next)
			if err := f.SetCellValue(s.sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
		next++
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// readRows читает все строки листа
func (s *Store) readRows() ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
	}
	return rows, nil
}

// parseRecord разбирает строку листа в каноничную запись.
// Недостающие хвостовые колонки ожидаемы и добиваются пустыми значениями.
func parseRecord(row []string) (models.CanonicalRecord, error) {
	padded := make([]string, 7)
	copy(padded, row)

	record := models.CanonicalRecord{
		BoxNumber: strings.TrimSpace(padded[0]),
		Name:      strings.TrimSpace(padded[1]),
		DOB:       strings.TrimSpace(padded[2]),
	}
	if record.Name == "" && record.DOB == "" {
		return record, fmt.Errorf("row has neither name nor dob")
	}

	var err error
	if record.YearJoined, err = parseIntCell(padded[3]); err != nil {
		return record, fmt.Errorf("bad year_joined: %w", err)
	}
	if record.LastDOS, err = parseIntCell(padded[4]); err != nil {
		return record, fmt.Errorf("bad last_dos: %w", err)
	}
	if record.ShredYear, err = parseIntCell(padded[5]); err != nil {
		return record, fmt.Errorf("bad shred_year: %w", err)
	}
	record.IsChildWhenJoined = parseBoolCell(padded[6])
	return record, nil
}

// parseIntCell разбирает числовую ячейку, пустая ячейка дает 0
func parseIntCell(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// parseBoolCell любая непустая не-ложная ячейка считается истиной
func parseBoolCell(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value != "" && value != "false" && value != "0"
}
