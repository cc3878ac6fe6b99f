package exporter

import (
	"strconv"

	"github.com/electroluxcode/score-analyzer/internal/dataprocessing"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

type cellKind int

const (
	kindText cellKind = iota
	kindScore
	kindRank
	kindInt
)

// column is one exported field.
type column struct {
	header string
	kind   cellKind
	text   func(exam *domain.ExamSnapshot, r *domain.StudentRecord) string
	number func(r *domain.StudentRecord) float64
	rank   func(r *domain.StudentRecord) int
}

func textColumn(header string, fn func(*domain.ExamSnapshot, *domain.StudentRecord) string) column {
	return column{header: header, kind: kindText, text: fn}
}

func scoreColumn(header string, fn func(*domain.StudentRecord) float64) column {
	return column{header: header, kind: kindScore, number: fn}
}

func rankColumn(header string, fn func(*domain.StudentRecord) int) column {
	return column{header: header, kind: kindRank, rank: fn}
}

// rosterColumns lists the export layout. The assigned block is appended
// only when withAssigned is set.
func rosterColumns(withAssigned bool) []column {
	cols := []column{
		{header: dataprocessing.HeaderExam, kind: kindInt},
		textColumn(dataprocessing.HeaderExamName, func(e *domain.ExamSnapshot, _ *domain.StudentRecord) string { return e.ExamName }),
		textColumn(dataprocessing.HeaderExamTime, func(e *domain.ExamSnapshot, _ *domain.StudentRecord) string { return e.ExamTime }),
		textColumn(dataprocessing.HeaderClass, func(_ *domain.ExamSnapshot, r *domain.StudentRecord) string { return r.Class }),
		textColumn(dataprocessing.HeaderStudentID, func(_ *domain.ExamSnapshot, r *domain.StudentRecord) string { return r.StudentID }),
		textColumn(dataprocessing.HeaderName, func(_ *domain.ExamSnapshot, r *domain.StudentRecord) string { return r.Name }),
		textColumn(dataprocessing.HeaderTrack, func(_ *domain.ExamSnapshot, r *domain.StudentRecord) string { return r.Track.Label() }),
	}

	for _, s := range domain.AllSubjects() {
		s := s
		cols = append(cols, scoreColumn(s.Label(), func(r *domain.StudentRecord) float64 { return r.Scores.Get(s) }))
	}
	cols = append(cols,
		scoreColumn(dataprocessing.HeaderTotal, func(r *domain.StudentRecord) float64 { return r.Total }),
		scoreColumn("四总", func(r *domain.StudentRecord) float64 { return r.FourTotal }),
		scoreColumn("六总", func(r *domain.StudentRecord) float64 { return r.SixTotal }),
	)

	for _, s := range domain.AllSubjects() {
		s := s
		cols = append(cols, rankColumn(s.Label()+"级排名", func(r *domain.StudentRecord) int { return r.GradeRanks.Subject(s) }))
	}
	cols = append(cols,
		rankColumn("总分级排名", func(r *domain.StudentRecord) int { return r.GradeRanks.Total }),
		rankColumn("四总排名", func(r *domain.StudentRecord) int { return r.GradeRanks.FourTotal }),
		rankColumn("六总排名", func(r *domain.StudentRecord) int { return r.GradeRanks.SixTotal }),
	)

	for _, s := range domain.AllSubjects() {
		s := s
		cols = append(cols, rankColumn(s.Label()+"班排名", func(r *domain.StudentRecord) int { return r.ClassRanks.Subject(s) }))
	}
	cols = append(cols, rankColumn("总分班排名", func(r *domain.StudentRecord) int { return r.ClassRanks.Total }))

	if !withAssigned {
		return cols
	}

	for _, s := range domain.AllSubjects() {
		s := s
		cols = append(cols, scoreColumn(s.Label()+"赋分", func(r *domain.StudentRecord) float64 {
			if r.Assigned == nil {
				return 0
			}
			return r.Assigned.Scores.Get(s)
		}))
	}
	cols = append(cols,
		scoreColumn("赋分总分", func(r *domain.StudentRecord) float64 { return assigned(r).Total }),
		scoreColumn("赋分四总", func(r *domain.StudentRecord) float64 { return assigned(r).FourTotal }),
		scoreColumn("赋分六总", func(r *domain.StudentRecord) float64 { return assigned(r).SixTotal }),
		rankColumn("赋分总分级排名", func(r *domain.StudentRecord) int { return assigned(r).GradeRanks.Total }),
	)
	return cols
}

func assigned(r *domain.StudentRecord) domain.AssignedScores {
	if r.Assigned == nil {
		return domain.AssignedScores{}
	}
	return *r.Assigned
}

func hasAssigned(snapshots []domain.ExamSnapshot) bool {
	for _, snap := range snapshots {
		for _, r := range snap.Students {
			if r.Assigned != nil {
				return true
			}
		}
	}
	return false
}

func headers(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

// cellValue returns the value written to a spreadsheet cell. Unplaced ranks
// become nil so the cell stays empty.
func (c column) cellValue(exam *domain.ExamSnapshot, r *domain.StudentRecord) interface{} {
	switch c.kind {
	case kindInt:
		return exam.ExamNumber
	case kindScore:
		return roundScore(c.number(r))
	case kindRank:
		if rank := c.rank(r); rank > 0 {
			return rank
		}
		return nil
	default:
		return c.text(exam, r)
	}
}

// cellText returns the value written to a CSV field.
func (c column) cellText(exam *domain.ExamSnapshot, r *domain.StudentRecord) string {
	switch c.kind {
	case kindInt:
		return strconv.Itoa(exam.ExamNumber)
	case kindScore:
		return formatScore(c.number(r))
	case kindRank:
		return formatRank(c.rank(r))
	default:
		return c.text(exam, r)
	}
}
