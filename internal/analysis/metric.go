package analysis

import (
	"fmt"
	"strings"

	"github.com/electroluxcode/score-analyzer/internal/scoring"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// Metric names a ranked value: one of the nine subject keys or a composite.
type Metric string

// Composite metrics.
const (
	MetricTotal     Metric = "total"
	MetricFourTotal Metric = "four_total"
	MetricSixTotal  Metric = "six_total"
)

// SubjectMetric returns the metric for one subject.
func SubjectMetric(s domain.Subject) Metric {
	return Metric(s.Key())
}

// ParseMetric accepts a subject key or label, or a composite name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricTotal, MetricFourTotal, MetricSixTotal:
		return m, nil
	}
	subject, err := domain.ParseSubject(s)
	if err != nil {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return SubjectMetric(subject), nil
}

// Label returns the display header for the metric.
func (m Metric) Label() string {
	switch m {
	case MetricTotal:
		return "总分"
	case MetricFourTotal:
		return "四总"
	case MetricSixTotal:
		return "六总"
	}
	if s, err := domain.ParseSubject(string(m)); err == nil {
		return s.Label()
	}
	return string(m)
}

// Value reads the raw metric from a record.
func (m Metric) Value(r *domain.StudentRecord) float64 {
	switch m {
	case MetricTotal:
		return scoring.NineTotal(r, scoring.Raw)
	case MetricFourTotal:
		return scoring.FourTotal(r, scoring.Raw)
	case MetricSixTotal:
		return scoring.SixTotal(r, scoring.Raw)
	}
	if s, err := domain.ParseSubject(string(m)); err == nil {
		return r.Scores.Get(s)
	}
	return 0
}

// scoreFunc adapts the metric to the rank engine.
func (m Metric) scoreFunc() scoring.ScoreFunc {
	return m.Value
}

// subjectAndTotalMetrics is the nine subjects followed by the total.
func subjectAndTotalMetrics() []Metric {
	out := make([]Metric, 0, domain.SubjectCount+1)
	for _, s := range domain.AllSubjects() {
		out = append(out, SubjectMetric(s))
	}
	return append(out, MetricTotal)
}

// trackMetrics is what the effective-value table reports for a track.
func trackMetrics(t domain.Track) []Metric {
	return []Metric{
		SubjectMetric(domain.SubjectChinese),
		SubjectMetric(domain.SubjectMath),
		SubjectMetric(domain.SubjectEnglish),
		SubjectMetric(t.Anchor()),
		MetricFourTotal,
		MetricSixTotal,
	}
}
