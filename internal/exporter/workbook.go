package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/electroluxcode/score-analyzer/internal/dataprocessing"
	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// WriteWorkbook writes one sheet per exam, named by exam ordinal.
func WriteWorkbook(w io.Writer, snapshots []domain.ExamSnapshot) error {
	if len(snapshots) == 0 {
		return apierrors.NewAppValidationError("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	cols := rosterColumns(hasAssigned(snapshots))
	header := headers(cols)
	used := make(map[string]int)

	for i := range snapshots {
		exam := &snapshots[i]
		sheet := sheetName(exam.ExamNumber, used)
		if err := addSheet(f, i, sheet); err != nil {
			return err
		}
		if err := writeHeader(f, sheet, header); err != nil {
			return err
		}

		for r := range exam.Students {
			rec := &exam.Students[r]
			row := make([]interface{}, len(cols))
			for c, col := range cols {
				row[c] = col.cellValue(exam, rec)
			}
			if err := setRow(f, sheet, r+2, row); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// WriteTemplate writes an import template: the recognised header and one
// example row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []string{
		dataprocessing.HeaderExam,
		dataprocessing.HeaderExamTime,
		dataprocessing.HeaderClass,
		dataprocessing.HeaderStudentID,
		dataprocessing.HeaderName,
	}
	for _, s := range domain.AllSubjects() {
		header = append(header, s.Label())
	}

	sheet := "1"
	if err := addSheet(f, 0, sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, header); err != nil {
		return err
	}
	example := []interface{}{1, "2025-12月考", "高一(1)", "202501001", "示例学生", 90, 85, 88, 75, 80, 0, 0, 0, 82}
	if err := setRow(f, sheet, 2, example); err != nil {
		return err
	}

	return f.Write(w)
}

func sheetName(examNumber int, used map[string]int) string {
	name := strconv.Itoa(examNumber)
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s (%d)", name, n)
	}
	return name
}

func addSheet(f *excelize.File, index int, sheet string) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to name sheet", err)
		}
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to add sheet", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to create header style", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to address header", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to style header", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 11); err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to size columns", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, "failed to address row", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeStorage, fmt.Sprintf("failed to write row %d", rowNum), err)
	}
	return nil
}
