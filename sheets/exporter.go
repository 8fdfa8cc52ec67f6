package sheets

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"cardindex/internal/domain/models"
)

// ExportAligned выгружает выровненную таблицу в отдельную книгу для ревью:
// слева каноничная запись, справа сопоставленный фрагмент и вердикт.
func ExportAligned(filename string, rows []models.AlignedRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Aligned"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{
		"Box", "Record Name", "Record DOB",
		"OCR Name", "OCR DOB", "Quality", "Confidence %",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, aligned := range rows {
		row := rowIdx + 2
		if aligned.Record != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), aligned.Record.BoxNumber)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), aligned.Record.Name)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), aligned.Record.DOB)
		}
		if aligned.Entry != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), aligned.Entry.Name)
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), aligned.Entry.DOB)
		}
		if aligned.Match != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), string(aligned.Match.Quality))
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), aligned.Match.ConfidencePercent)
		}
	}

	// Автоширина колонок
	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
