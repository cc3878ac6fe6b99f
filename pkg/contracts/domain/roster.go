package domain

import (
	"encoding/json"
	"fmt"
)

// ScoreSet holds one number per subject, indexed by Subject.
// A value of 0 means the subject was not taken.
type ScoreSet [SubjectCount]float64

// Get returns the score for s, or 0 for an invalid subject.
func (ss ScoreSet) Get(s Subject) float64 {
	if !s.Valid() {
		return 0
	}
	return ss[s]
}

// Set stores v for s.
func (ss *ScoreSet) Set(s Subject, v float64) {
	if s.Valid() {
		ss[s] = v
	}
}

// Sum adds up all nine scores.
func (ss ScoreSet) Sum() float64 {
	var total float64
	for _, v := range ss {
		total += v
	}
	return total
}

// MarshalJSON encodes the set as an object keyed by subject key.
func (ss ScoreSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, SubjectCount)
	for i, v := range ss {
		m[subjectKeys[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by subject key or label.
func (ss *ScoreSet) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*ss = ScoreSet{}
	for k, v := range m {
		s, err := ParseSubject(k)
		if err != nil {
			return err
		}
		ss[s] = v
	}
	return nil
}

// RankSet holds ranks for every ranked metric. 0 means "not placed".
type RankSet struct {
	Subjects  [SubjectCount]int `json:"-"`
	Total     int               `json:"total"`
	FourTotal int               `json:"four_total"`
	SixTotal  int               `json:"six_total"`
}

// Subject returns the rank for s.
func (rs RankSet) Subject(s Subject) int {
	if !s.Valid() {
		return 0
	}
	return rs.Subjects[s]
}

// MarshalJSON flattens subject ranks next to the composite ranks.
func (rs RankSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, SubjectCount+3)
	for i, v := range rs.Subjects {
		m[subjectKeys[i]] = v
	}
	m["total"] = rs.Total
	m["four_total"] = rs.FourTotal
	m["six_total"] = rs.SixTotal
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (rs *RankSet) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*rs = RankSet{}
	for k, v := range m {
		switch k {
		case "total":
			rs.Total = v
		case "four_total":
			rs.FourTotal = v
		case "six_total":
			rs.SixTotal = v
		default:
			s, err := ParseSubject(k)
			if err != nil {
				return err
			}
			rs.Subjects[s] = v
		}
	}
	return nil
}

// AssignedScores carries the standardized scores of one student and
// everything derived from them.
type AssignedScores struct {
	Scores     ScoreSet   `json:"scores"`
	Enabled    SubjectSet `json:"enabled"`
	Total      float64    `json:"total"`
	FourTotal  float64    `json:"four_total"`
	SixTotal   float64    `json:"six_total"`
	GradeRanks RankSet    `json:"grade_ranks"`
	ClassRanks RankSet    `json:"class_ranks"`
}

// StudentRecord is one student's row in one exam.
type StudentRecord struct {
	StudentID string  `json:"student_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Class     string  `json:"class"`
	Scores    ScoreSet `json:"scores"`

	// Derived by the scoring pipeline.
	Track      Track           `json:"track"`
	Total      float64         `json:"total"`
	FourTotal  float64         `json:"four_total"`
	SixTotal   float64         `json:"six_total"`
	GradeRanks RankSet         `json:"grade_ranks"`
	ClassRanks RankSet         `json:"class_ranks"`
	Assigned   *AssignedScores `json:"assigned,omitempty"`
}

// Clone returns a deep copy of the record.
func (r StudentRecord) Clone() StudentRecord {
	if r.Assigned != nil {
		a := *r.Assigned
		r.Assigned = &a
	}
	return r
}

// ExamSnapshot is the roster of one exam.
type ExamSnapshot struct {
	ExamNumber int             `json:"exam_number"`
	ExamName   string          `json:"exam_name"`
	ExamTime   string          `json:"exam_time,omitempty"`
	Students   []StudentRecord `json:"students"`
}

// Clone returns a deep copy of the snapshot.
func (e ExamSnapshot) Clone() ExamSnapshot {
	students := make([]StudentRecord, len(e.Students))
	for i, s := range e.Students {
		students[i] = s.Clone()
	}
	e.Students = students
	return e
}

// MarshalJSON encodes the set as a list of subject keys.
func (set SubjectSet) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, SubjectCount)
	for _, s := range set.Subjects() {
		keys = append(keys, s.Key())
	}
	return json.Marshal(keys)
}

// UnmarshalJSON decodes a list of subject keys or labels.
func (set *SubjectSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("subject set: %w", err)
	}
	*set = 0
	for _, n := range names {
		s, err := ParseSubject(n)
		if err != nil {
			return err
		}
		*set = set.With(s)
	}
	return nil
}
