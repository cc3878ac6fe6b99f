package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// Point is one exam's value in a series.
type Point struct {
	Exam  int     `json:"exam"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Series is a metric tracked across exams.
type Series struct {
	Metric Metric  `json:"metric"`
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// AverageScores returns the mean of every subject and the total per exam,
// over scores above zero, rounded to one decimal. class "" means the whole
// grade. Exams where nobody took a subject have no point.
func AverageScores(data []domain.ExamSnapshot, class string) []Series {
	return perExamSeries(data, class, 1, func(values []float64) float64 {
		return stat.Mean(values, nil)
	})
}

// StandardDeviations returns the population standard deviation per
// subject and exam, rounded to one decimal. At least two scores are needed.
func StandardDeviations(data []domain.ExamSnapshot, class string) []Series {
	return perExamSeries(data, class, 2, func(values []float64) float64 {
		return stat.PopStdDev(values, nil)
	})
}

func perExamSeries(data []domain.ExamSnapshot, class string, minCount int, reduce func([]float64) float64) []Series {
	metrics := subjectAndTotalMetrics()
	out := make([]Series, len(metrics))
	for i, m := range metrics {
		out[i] = Series{Metric: m, Label: m.Label(), Points: []Point{}}
	}

	for _, exam := range data {
		students := filterClass(exam, class)
		for i, m := range metrics {
			values := positive(students, m)
			if len(values) < minCount {
				continue
			}
			out[i].Points = append(out[i].Points, Point{Exam: exam.ExamNumber, Value: round(reduce(values), 1), Count: len(values)})
		}
	}
	return out
}

// Matrix is a square subject-by-subject table.
type Matrix struct {
	Subjects []domain.Subject `json:"subjects"`
	Values   [][]float64      `json:"values"`
}

// CorrelationMatrix computes the Pearson correlation between every pair of
// subjects over students who took both, pooled across exams. The diagonal
// is 1; undefined correlations are 0. Values are rounded to two decimals.
func CorrelationMatrix(data []domain.ExamSnapshot) Matrix {
	subjects := domain.AllSubjects()
	values := make([][]float64, len(subjects))
	for i := range values {
		values[i] = make([]float64, len(subjects))
		values[i][i] = 1
	}

	for i := 0; i < len(subjects); i++ {
		for j := i + 1; j < len(subjects); j++ {
			c := pairCorrelation(data, subjects[i], subjects[j])
			values[i][j], values[j][i] = c, c
		}
	}
	return Matrix{Subjects: subjects, Values: values}
}

func pairCorrelation(data []domain.ExamSnapshot, a, b domain.Subject) float64 {
	var xs, ys []float64
	for _, exam := range data {
		for _, s := range exam.Students {
			x, y := s.Scores.Get(a), s.Scores.Get(b)
			if x > 0 && y > 0 {
				xs = append(xs, x)
				ys = append(ys, y)
			}
		}
	}
	if len(xs) < 2 {
		return 0
	}
	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return round(c, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
