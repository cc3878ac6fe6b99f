package analysis

import (
	"github.com/electroluxcode/score-analyzer/internal/scoring"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// Placement is one student inside a top list.
type Placement struct {
	Exam      int     `json:"exam"`
	Rank      int     `json:"rank"`
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Class     string  `json:"class"`
	Score     float64 `json:"score"`
}

// TopStudents returns, per exam, the n best students by metric. Students
// without a positive value are never listed.
func TopStudents(data []domain.ExamSnapshot, n int, metric Metric) []Placement {
	var out []Placement
	for _, exam := range data {
		students := filterClass(exam, "")
		for _, p := range topN(students, metric, n) {
			out = append(out, Placement{
				Exam:      exam.ExamNumber,
				Rank:      p.rank,
				StudentID: p.student.StudentID,
				Name:      p.student.Name,
				Class:     p.student.Class,
				Score:     metric.Value(p.student),
			})
		}
	}
	return out
}

// ClassAdvantage describes how many of a class's students sit inside the
// grade's top n for one metric.
type ClassAdvantage struct {
	Exam       int     `json:"exam"`
	Class      string  `json:"class"`
	Metric     Metric  `json:"metric"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	ClassSize  int     `json:"class_size"`
	Percentage float64 `json:"percentage"`
}

// ClassAdvantages computes, for every exam, subject (and the total) and
// class, the share of the class inside the grade top n. The percentage is
// relative to the class size and rounded to one decimal.
func ClassAdvantages(data []domain.ExamSnapshot, n int) []ClassAdvantage {
	classes := Classes(data)

	var out []ClassAdvantage
	for _, exam := range data {
		students := filterClass(exam, "")
		sizes := classSizes(students)
		for _, m := range subjectAndTotalMetrics() {
			counts := countByClass(topN(students, m, n))
			for _, class := range classes {
				adv := ClassAdvantage{
					Exam:      exam.ExamNumber,
					Class:     class,
					Metric:    m,
					Label:     m.Label(),
					Count:     counts[class],
					ClassSize: sizes[class],
				}
				if adv.ClassSize > 0 {
					adv.Percentage = round(float64(adv.Count)/float64(adv.ClassSize)*100, 1)
				}
				out = append(out, adv)
			}
		}
	}
	return out
}

// EffectiveValue counts one class's students inside a track's top n.
type EffectiveValue struct {
	Exam   int          `json:"exam"`
	Track  domain.Track `json:"track"`
	Metric Metric       `json:"metric"`
	Label  string       `json:"label"`
	Class  string       `json:"class"`
	Count  int          `json:"count"`
}

// EffectiveValues reports, per exam and track, how many students of each
// class fall inside the track's top n for Chinese, Math, English, the
// track anchor, and the four- and six-subject composites.
func EffectiveValues(data []domain.ExamSnapshot, n int) []EffectiveValue {
	classes := Classes(data)

	var out []EffectiveValue
	for _, exam := range data {
		byTrack := splitByTrack(filterClass(exam, ""))
		for _, track := range domain.Tracks() {
			for _, m := range trackMetrics(track) {
				counts := countByClass(topN(byTrack[track], m, n))
				for _, class := range classes {
					out = append(out, EffectiveValue{
						Exam:   exam.ExamNumber,
						Track:  track,
						Metric: m,
						Label:  m.Label(),
						Class:  class,
						Count:  counts[class],
					})
				}
			}
		}
	}
	return out
}

// ClassShare is one class's slice of a track's top n by six-subject total.
type ClassShare struct {
	Exam       int          `json:"exam"`
	Track      domain.Track `json:"track"`
	Class      string       `json:"class"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

// ClassShareTrends returns, per exam and track, each class's share of the
// track's top n by six-subject total, in percent of the students actually
// listed (fewer than n when the track is small).
func ClassShareTrends(data []domain.ExamSnapshot, n int) []ClassShare {
	classes := Classes(data)

	var out []ClassShare
	for _, exam := range data {
		byTrack := splitByTrack(filterClass(exam, ""))
		for _, track := range domain.Tracks() {
			top := topN(byTrack[track], MetricSixTotal, n)
			counts := countByClass(top)
			for _, class := range classes {
				share := ClassShare{Exam: exam.ExamNumber, Track: track, Class: class, Count: counts[class]}
				if len(top) > 0 {
					share.Percentage = round(float64(share.Count)/float64(len(top))*100, 1)
				}
				out = append(out, share)
			}
		}
	}
	return out
}

type ranked struct {
	student *domain.StudentRecord
	rank    int
}

// topN ranks students on metric with the scoring rank engine and keeps the
// first n placements.
func topN(students []*domain.StudentRecord, m Metric, n int) []ranked {
	if n <= 0 {
		return nil
	}
	var out []ranked
	for _, p := range scoring.Order(students, m.scoreFunc(), scoring.TieSequential) {
		if p.Rank > n {
			break
		}
		out = append(out, ranked{student: students[p.Index], rank: p.Rank})
	}
	return out
}

func countByClass(top []ranked) map[string]int {
	counts := make(map[string]int)
	for _, r := range top {
		counts[r.student.Class]++
	}
	return counts
}

func classSizes(students []*domain.StudentRecord) map[string]int {
	sizes := make(map[string]int)
	for _, s := range students {
		sizes[s.Class]++
	}
	return sizes
}

func splitByTrack(students []*domain.StudentRecord) map[domain.Track][]*domain.StudentRecord {
	out := make(map[domain.Track][]*domain.StudentRecord, 2)
	for _, s := range students {
		t := scoring.Classify(s)
		out[t] = append(out[t], s)
	}
	return out
}
