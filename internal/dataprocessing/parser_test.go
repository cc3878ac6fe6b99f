package dataprocessing

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

type sheetFixture struct {
	name string
	rows [][]interface{}
}

var standardHeader = []interface{}{"考试", "考试时间", "班号", "学号", "姓名", "语文", "数学", "英语", "物理", "化学", "政治", "历史", "地理", "生物", "总分"}

// buildWorkbook writes the fixtures into an in-memory xlsx. The first
// fixture replaces the default sheet so sheet order matches slice order.
func buildWorkbook(t *testing.T, sheets ...sheetFixture) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cellRef, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(s.name, cellRef, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func quietOptions() ParseOptions {
	return ParseOptions{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

func TestParseWorkbook(t *testing.T) {
	buf := buildWorkbook(t,
		sheetFixture{name: "2", rows: [][]interface{}{
			standardHeader,
			{2, "2025-01", "1", "1001", "张三", 92, 88, 90, 80, 70, 0, 0, 0, 75, 495},
		}},
		sheetFixture{name: "1", rows: [][]interface{}{
			standardHeader,
			{1, "2024-12", "1", "1001", "张三", 90, 85, 88, 75, 0, 0, 0, 0, 0, 338},
			{1, "2024-12", "2", "1002", "李四", 80, 75, 78, 0, 0, 0, 60, 0, 0, 293},
		}},
	)

	snaps, err := ParseWorkbook(buf, quietOptions())
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	first := snaps[0]
	assert.Equal(t, 1, first.ExamNumber)
	assert.Equal(t, "1", first.ExamName)
	assert.Equal(t, "2024-12", first.ExamTime)
	require.Len(t, first.Students, 2)

	s := first.Students[0]
	assert.Equal(t, "1001", s.StudentID)
	assert.Equal(t, "张三", s.Name)
	assert.Equal(t, "1", s.Class)
	assert.Equal(t, 90.0, s.Scores.Get(domain.SubjectChinese))
	assert.Equal(t, 75.0, s.Scores.Get(domain.SubjectPhysics))
	assert.Equal(t, 0.0, s.Scores.Get(domain.SubjectHistory))
	assert.Zero(t, s.Total, "totals are left to the scoring pipeline")

	assert.Equal(t, 60.0, first.Students[1].Scores.Get(domain.SubjectHistory))
	assert.Equal(t, 2, snaps[1].ExamNumber)
	assert.Equal(t, 75.0, snaps[1].Students[0].Scores.Get(domain.SubjectBiology))
}

func TestParseWorkbookExamOrdinal(t *testing.T) {
	buf := buildWorkbook(t,
		sheetFixture{name: "期中", rows: [][]interface{}{
			standardHeader,
			{3, "", "1", "1001", "张三", 90},
		}},
		sheetFixture{name: "期末", rows: [][]interface{}{
			{"姓名", "语文"},
			{"张三", 95},
		}},
	)

	snaps, err := ParseWorkbook(buf, quietOptions())
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, 2, snaps[0].ExamNumber, "falls back to sheet position")
	assert.Equal(t, "期末", snaps[0].ExamName)
	assert.Equal(t, 3, snaps[1].ExamNumber, "taken from the exam column")
	assert.Equal(t, "期中", snaps[1].ExamName)
}

func TestParseWorkbookSkipsSheetsAndRows(t *testing.T) {
	buf := buildWorkbook(t,
		sheetFixture{name: "说明", rows: [][]interface{}{
			{"姓名", "语文"},
			{"示例", 1},
		}},
		sheetFixture{name: "1", rows: [][]interface{}{
			{"学号", "姓名", "语文"},
			{"1001", "张三", 90},
			{"1002", "", 80},
			{"", "王五", 70},
		}},
		sheetFixture{name: "2", rows: [][]interface{}{
			{"学号", "语文"},
			{"1001", 90},
		}},
		sheetFixture{name: "3", rows: [][]interface{}{
			{"学号", "姓名"},
		}},
	)

	snaps, err := ParseWorkbook(buf, quietOptions())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].ExamNumber)

	students := snaps[0].Students
	require.Len(t, students, 2)
	assert.Equal(t, "张三", students[0].Name)
	assert.Equal(t, "王五", students[1].StudentID, "missing id falls back to the name")
}

func TestParseWorkbookScoreCoercion(t *testing.T) {
	buf := buildWorkbook(t, sheetFixture{name: "1", rows: [][]interface{}{
		{"姓名", "语文", "数学", "英语", "物理", "化学"},
		{"张三", "缺考", "", -5, 88.5, "1,00"},
	}})

	snaps, err := ParseWorkbook(buf, quietOptions())
	require.NoError(t, err)

	scores := snaps[0].Students[0].Scores
	assert.Equal(t, 0.0, scores.Get(domain.SubjectChinese))
	assert.Equal(t, 0.0, scores.Get(domain.SubjectMath))
	assert.Equal(t, 0.0, scores.Get(domain.SubjectEnglish))
	assert.Equal(t, 88.5, scores.Get(domain.SubjectPhysics))
	assert.Equal(t, 100.0, scores.Get(domain.SubjectChemistry))
}

func TestParseWorkbookFieldMapping(t *testing.T) {
	buf := buildWorkbook(t, sheetFixture{name: "1", rows: [][]interface{}{
		{"学生姓名", "物理成绩", "语文"},
		{"张三", 77, 90},
	}})

	opts := quietOptions()
	opts.Mapping = FieldMapping{"学生姓名": "姓名", "物理成绩": "物理", "语文": ""}

	snaps, err := ParseWorkbook(buf, opts)
	require.NoError(t, err)

	s := snaps[0].Students[0]
	assert.Equal(t, "张三", s.Name)
	assert.Equal(t, 77.0, s.Scores.Get(domain.SubjectPhysics))
	assert.Equal(t, 90.0, s.Scores.Get(domain.SubjectChinese), "empty mapping keeps the header")
}

func TestParseWorkbookErrors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := ParseWorkbook(strings.NewReader("definitely not a zip"), quietOptions())
		require.Error(t, err)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
	})

	t.Run("no exam data", func(t *testing.T) {
		buf := buildWorkbook(t, sheetFixture{name: "统计", rows: [][]interface{}{{"姓名"}, {"张三"}}})
		_, err := ParseWorkbook(buf, quietOptions())
		require.Error(t, err)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"), quietOptions())
		require.Error(t, err)
		assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
	})
}

func TestParseFile(t *testing.T) {
	buf := buildWorkbook(t, sheetFixture{name: "1", rows: [][]interface{}{
		{"姓名", "数学"},
		{"张三", 99},
	}})
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	snaps, err := ParseFile(path, quietOptions())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 99.0, snaps[0].Students[0].Scores.Get(domain.SubjectMath))
}
