// Package exporter writes scored rosters back out for teachers.
//
// WriteWorkbook produces one sheet per exam with raw scores, composites,
// grade and class ranks, and the assigned-score block when the pipeline
// produced one. WriteTemplate produces an empty import template.
// WriteCSV flattens every exam into a single UTF-8 CSV with a BOM so that
// Excel opens the Chinese headers correctly.
//
// Ranks of 0 mean "no placement" and are written as empty cells.
package exporter
