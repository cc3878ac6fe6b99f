package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes every exam's students as one flat CSV, prefixed with a
// UTF-8 BOM for Excel.
func WriteCSV(w io.Writer, snapshots []domain.ExamSnapshot) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cols := rosterColumns(hasAssigned(snapshots))
	writer := csv.NewWriter(w)
	if err := writer.Write(headers(cols)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(cols))
	for i := range snapshots {
		exam := &snapshots[i]
		for r := range exam.Students {
			rec := &exam.Students[r]
			for c, col := range cols {
				record[c] = col.cellText(exam, rec)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %s: %w", rec.StudentID, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the CSV to path, creating parent directories.
func WriteCSVFile(path string, snapshots []domain.ExamSnapshot) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("exam_count", len(snapshots)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteCSV(file, snapshots); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteWorkbookFile writes the workbook to path, creating parent directories.
func WriteWorkbookFile(path string, snapshots []domain.ExamSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteWorkbook(file, snapshots); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
