package analysis

import (
	"sort"
	"strconv"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// ExamNumbers lists the exam ordinals in input order.
func ExamNumbers(data []domain.ExamSnapshot) []int {
	out := make([]int, len(data))
	for i, exam := range data {
		out[i] = exam.ExamNumber
	}
	return out
}

// Classes lists every non-empty class label, sorted numerically where the
// labels are numbers.
func Classes(data []domain.ExamSnapshot) []string {
	seen := make(map[string]bool)
	var out []string
	for _, exam := range data {
		for _, s := range exam.Students {
			if s.Class != "" && !seen[s.Class] {
				seen[s.Class] = true
				out = append(out, s.Class)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return classLess(out[i], out[j]) })
	return out
}

func classLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Students returns each student once, as first seen across exams.
func Students(data []domain.ExamSnapshot) []domain.StudentRecord {
	seen := make(map[string]bool)
	var out []domain.StudentRecord
	for _, exam := range data {
		for _, s := range exam.Students {
			if seen[s.StudentID] {
				continue
			}
			seen[s.StudentID] = true
			out = append(out, s.Clone())
		}
	}
	return out
}

// FilterByExams keeps the snapshots whose ordinal is listed. An empty list
// keeps everything.
func FilterByExams(data []domain.ExamSnapshot, exams []int) []domain.ExamSnapshot {
	if len(exams) == 0 {
		return data
	}
	want := make(map[int]bool, len(exams))
	for _, n := range exams {
		want[n] = true
	}
	var out []domain.ExamSnapshot
	for _, exam := range data {
		if want[exam.ExamNumber] {
			out = append(out, exam)
		}
	}
	return out
}

// filterClass narrows a snapshot's students to one class; "" keeps all.
func filterClass(exam domain.ExamSnapshot, class string) []*domain.StudentRecord {
	out := make([]*domain.StudentRecord, 0, len(exam.Students))
	for i := range exam.Students {
		if class == "" || exam.Students[i].Class == class {
			out = append(out, &exam.Students[i])
		}
	}
	return out
}

// positive collects the metric's values above zero.
func positive(students []*domain.StudentRecord, m Metric) []float64 {
	out := make([]float64, 0, len(students))
	for _, s := range students {
		if v := m.Value(s); v > 0 {
			out = append(out, v)
		}
	}
	return out
}
