// Package dataprocessing turns the files teachers hand us into domain values.
//
// # Workbooks
//
// ParseWorkbook reads an .xlsx roster where every sheet is one exam. Row 1
// holds the headers; recognised columns are 考试/考试顺序, 考试时间, 班号,
// 学号, 姓名 and the nine subject labels. Anything else, including
// pre-computed totals and ranks, is ignored because the scoring pipeline
// recomputes them.
//
//	snapshots, err := dataprocessing.ParseFile("scores.xlsx", dataprocessing.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//
// A FieldMapping renames source headers before recognition, so a column
// titled 物理成绩 can be read as 物理.
//
// # Assignment configs
//
// ParseAssignmentConfig reads the plain-text grade table:
//
//	生效字段:物理 化学 生物
//	A,15,95,83
//	B,34,82,71
//
// Every malformed line is reported at once in a VALIDATION AppError.
// FormatAssignmentConfig writes the same format back.
//
// # Score cells
//
// Empty, non-numeric and negative cells become 0, the "not taken" sentinel
// every downstream filter relies on.
package dataprocessing
