package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/electroluxcode/score-analyzer/internal/infrastructure"
)

var header = []interface{}{"班号", "学号", "姓名", "语文", "数学", "英语", "物理", "化学", "政治", "历史", "地理", "生物"}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "1"))
	rows := [][]interface{}{
		header,
		{"1", "s1", "甲", 90, 85, 88, 75, 0, 0, 0, 0, 0},
		{"1", "s2", "乙", 80, 75, 78, 0, 0, 0, 60, 0, 0},
		{"2", "s3", "丙", 70, 65, 68, 0, 0, 0, 50, 0, 0},
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("1", cell, &row))
	}

	path := filepath.Join(dir, "scores.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	csvPath := filepath.Join(dir, "scores.csv")

	err := run(context.Background(), options{in: in, csv: csvPath}, infrastructure.NewLogger(io.Discard, "error"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "scores-scored.xlsx"))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeff"))
	assert.Contains(t, string(data), "338")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	badBands := filepath.Join(dir, "bands.txt")
	require.NoError(t, os.WriteFile(badBands, []byte("A,90,100,80\n"), 0o644))

	tests := []struct {
		name string
		opts options
	}{
		{"missing input flag", options{}},
		{"missing input file", options{in: filepath.Join(dir, "nope.xlsx")}},
		{"bad tie policy", options{in: in, ties: "coin-toss"}},
		{"missing bands file", options{in: in, bands: filepath.Join(dir, "nope.txt")}},
		{"invalid bands", options{in: in, bands: badBands}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.opts, infrastructure.NewLogger(io.Discard, "error"))
			assert.Error(t, err)
		})
	}
}

func TestRun_NoAssign(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "out.xlsx")

	err := run(context.Background(), options{in: in, out: out, noAssign: true, workers: 1},
		infrastructure.NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	assert.FileExists(t, out)
}
