package worklist

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"radiology-portal/internal/models"
)

const exportSheet = "Worklist"

// ExportHeader is the first row of an exported worklist.
var ExportHeader = []string{
	"Exam ID",
	"Patient",
	"Exam Type",
	"Modality",
	"Date",
	"Category",
	"Site",
	"AI Status",
	"Assigned Doctor",
	"Reported",
	"Indication",
}

// Export writes exams, in the given order, as a single-sheet XLSX workbook.
func Export(w io.Writer, exams []*models.Exam) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range exams {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			e.ExamID,
			e.PatientName,
			e.ExamType,
			e.Modality(),
			e.Date.Format("2006-01-02 15:04"),
			string(e.Category),
			string(e.Site),
			string(e.AIStatus),
			e.AssignedDoctor,
			e.Reported,
			e.Indication,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
