package dataprocessing

import (
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// Canonical column headers.
const (
	HeaderExam      = "考试"
	HeaderExamOrder = "考试顺序"
	HeaderExamTime  = "考试时间"
	HeaderExamName  = "考试名称"
	HeaderClass     = "班号"
	HeaderStudentID = "学号"
	HeaderName      = "姓名"
	HeaderTrack     = "类别"
	HeaderTotal     = "总分"
)

// skippedSheets are never exams.
var skippedSheets = map[string]bool{
	"统计":   true,
	"说明":   true,
	"说明页":  true,
	"说明页1": true,
}

// FieldMapping renames source headers (e.g. 物理成绩) to canonical ones
// (物理). Unmapped headers are used as-is.
type FieldMapping map[string]string

// Resolve returns the canonical header for a source header.
func (m FieldMapping) Resolve(header string) string {
	header = strings.TrimSpace(header)
	if mapped, ok := m[header]; ok && strings.TrimSpace(mapped) != "" {
		return strings.TrimSpace(mapped)
	}
	return header
}

// ParseOptions controls workbook parsing.
type ParseOptions struct {
	Mapping FieldMapping
	Logger  *slog.Logger
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// columns records where each recognised header sits in a sheet.
type columns struct {
	exam, examTime, class, studentID, name int
	subjects                               [domain.SubjectCount]int
}

func newColumns() columns {
	c := columns{exam: -1, examTime: -1, class: -1, studentID: -1, name: -1}
	for i := range c.subjects {
		c.subjects[i] = -1
	}
	return c
}

// ParseFile opens path and parses it with ParseWorkbook semantics.
func ParseFile(path string, opts ParseOptions) ([]domain.ExamSnapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

// ParseWorkbook reads every exam sheet of an .xlsx stream. Snapshots are
// returned sorted by exam ordinal.
func ParseWorkbook(r io.Reader, opts ParseOptions) ([]domain.ExamSnapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read workbook", err)
	}
	defer f.Close()

	return parseWorkbook(f, opts)
}

func parseWorkbook(f *excelize.File, opts ParseOptions) ([]domain.ExamSnapshot, error) {
	logger := opts.logger()

	var snapshots []domain.ExamSnapshot
	for index, sheet := range f.GetSheetList() {
		if skippedSheets[strings.TrimSpace(sheet)] {
			logger.Debug("skipping non-exam sheet", slog.String("sheet", sheet))
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apierrors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheet)
		}

		snap, ok := parseSheet(sheet, index, rows, opts.Mapping, logger)
		if !ok {
			continue
		}
		snapshots = append(snapshots, snap)
	}

	if len(snapshots) == 0 {
		return nil, apierrors.NewParsingError("workbook contains no exam data", nil)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].ExamNumber < snapshots[j].ExamNumber
	})

	logger.Info("workbook parsed", slog.Int("exams", len(snapshots)))
	return snapshots, nil
}

func parseSheet(sheet string, index int, rows [][]string, mapping FieldMapping, logger *slog.Logger) (domain.ExamSnapshot, bool) {
	if len(rows) < 2 {
		logger.Debug("sheet has no data rows", slog.String("sheet", sheet))
		return domain.ExamSnapshot{}, false
	}

	cols := mapHeader(rows[0], mapping)
	if cols.name < 0 {
		logger.Warn("sheet has no name column, skipping",
			slog.String("sheet", sheet),
			slog.String("column", HeaderName),
		)
		return domain.ExamSnapshot{}, false
	}

	snap := domain.ExamSnapshot{ExamName: strings.TrimSpace(sheet)}
	for _, row := range rows[1:] {
		name := cell(row, cols.name)
		if name == "" {
			continue
		}

		rec := domain.StudentRecord{
			StudentID: cell(row, cols.studentID),
			Name:      name,
			Class:     cell(row, cols.class),
		}
		if rec.StudentID == "" {
			rec.StudentID = name
		}
		for i, col := range cols.subjects {
			rec.Scores[i] = scoreCell(row, col)
		}
		if len(snap.Students) == 0 {
			snap.ExamTime = cell(row, cols.examTime)
			if n, ok := ordinalCell(row, cols.exam); ok {
				snap.ExamNumber = n
			}
		}
		snap.Students = append(snap.Students, rec)
	}

	if len(snap.Students) == 0 {
		logger.Debug("sheet has no students", slog.String("sheet", sheet))
		return domain.ExamSnapshot{}, false
	}

	// A numeric sheet name wins over the 考试 column.
	if n, err := strconv.Atoi(strings.TrimSpace(sheet)); err == nil {
		snap.ExamNumber = n
	} else if snap.ExamNumber == 0 {
		snap.ExamNumber = index + 1
	}

	logger.Debug("sheet parsed",
		slog.String("sheet", sheet),
		slog.Int("exam", snap.ExamNumber),
		slog.Int("students", len(snap.Students)),
	)
	return snap, true
}

func mapHeader(header []string, mapping FieldMapping) columns {
	cols := newColumns()
	for i, raw := range header {
		h := mapping.Resolve(raw)
		switch h {
		case "":
			continue
		case HeaderExam, HeaderExamOrder:
			cols.exam = i
		case HeaderExamTime:
			cols.examTime = i
		case HeaderClass:
			cols.class = i
		case HeaderStudentID:
			cols.studentID = i
		case HeaderName:
			cols.name = i
		default:
			for _, s := range domain.AllSubjects() {
				if h == s.Label() {
					cols.subjects[s] = i
					break
				}
			}
		}
	}
	return cols
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// scoreCell coerces a cell to a score, mapping anything unusable to 0.
func scoreCell(row []string, col int) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, col), ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func ordinalCell(row []string, col int) (int, bool) {
	v, err := strconv.ParseFloat(cell(row, col), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int(v), true
}
