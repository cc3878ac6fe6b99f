package domain

import (
	"fmt"
	"strings"
)

// Subject identifies one of the nine examined subjects.
type Subject int

// Subjects in workbook column order.
const (
	SubjectChinese Subject = iota
	SubjectMath
	SubjectEnglish
	SubjectPhysics
	SubjectChemistry
	SubjectPolitics
	SubjectHistory
	SubjectGeography
	SubjectBiology
)

// SubjectCount is the number of examined subjects.
const SubjectCount = 9

var subjectKeys = [SubjectCount]string{
	"chinese", "math", "english", "physics", "chemistry",
	"politics", "history", "geography", "biology",
}

var subjectLabels = [SubjectCount]string{
	"语文", "数学", "英语", "物理", "化学", "政治", "历史", "地理", "生物",
}

// AllSubjects returns the nine subjects in column order.
func AllSubjects() []Subject {
	out := make([]Subject, SubjectCount)
	for i := range out {
		out[i] = Subject(i)
	}
	return out
}

// Valid reports whether s is one of the nine subjects.
func (s Subject) Valid() bool {
	return s >= 0 && int(s) < SubjectCount
}

// Key returns the wire key, e.g. "physics".
func (s Subject) Key() string {
	if !s.Valid() {
		return "unknown"
	}
	return subjectKeys[s]
}

// Label returns the workbook column header, e.g. "物理".
func (s Subject) Label() string {
	if !s.Valid() {
		return "unknown"
	}
	return subjectLabels[s]
}

// String implements fmt.Stringer
func (s Subject) String() string {
	return s.Key()
}

// MarshalText encodes the subject as its key.
func (s Subject) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid subject: %d", int(s))
	}
	return []byte(s.Key()), nil
}

// UnmarshalText accepts either a key or a label.
func (s *Subject) UnmarshalText(text []byte) error {
	parsed, err := ParseSubject(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSubject resolves a key ("physics") or a label ("物理").
func ParseSubject(name string) (Subject, error) {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	for i := 0; i < SubjectCount; i++ {
		if subjectKeys[i] == lower || subjectLabels[i] == name {
			return Subject(i), nil
		}
	}
	return 0, fmt.Errorf("unknown subject %q", name)
}

// SubjectSet is a set of subjects stored as a bitmask.
type SubjectSet uint16

// NewSubjectSet builds a set from the given subjects.
func NewSubjectSet(subjects ...Subject) SubjectSet {
	var set SubjectSet
	for _, s := range subjects {
		set = set.With(s)
	}
	return set
}

// With returns a copy of the set including s.
func (set SubjectSet) With(s Subject) SubjectSet {
	if !s.Valid() {
		return set
	}
	return set | 1<<uint(s)
}

// Has reports whether s is in the set.
func (set SubjectSet) Has(s Subject) bool {
	return s.Valid() && set&(1<<uint(s)) != 0
}

// Empty reports whether the set has no members.
func (set SubjectSet) Empty() bool {
	return set == 0
}

// Subjects lists the members in column order.
func (set SubjectSet) Subjects() []Subject {
	var out []Subject
	for _, s := range AllSubjects() {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Track is a student's elective grouping.
type Track int

const (
	// TrackScience groups physics, chemistry and biology.
	TrackScience Track = iota
	// TrackHumanities groups politics, history and geography.
	TrackHumanities
)

// Tracks returns both tracks, science first.
func Tracks() []Track {
	return []Track{TrackScience, TrackHumanities}
}

// Key returns the wire key used by the original workbook tooling.
func (t Track) Key() string {
	switch t {
	case TrackScience:
		return "physics"
	case TrackHumanities:
		return "history"
	default:
		return "unknown"
	}
}

// Label returns the display label.
func (t Track) Label() string {
	switch t {
	case TrackScience:
		return "物理类"
	case TrackHumanities:
		return "历史类"
	default:
		return "unknown"
	}
}

// Anchor returns the subject that joins the three core subjects in the
// four-subject composite.
func (t Track) Anchor() Subject {
	if t == TrackHumanities {
		return SubjectHistory
	}
	return SubjectPhysics
}

// Electives returns the pool the six-subject composite draws its two best
// scores from. The pool never contains the track's anchor.
func (t Track) Electives() []Subject {
	if t == TrackHumanities {
		return []Subject{SubjectChemistry, SubjectPolitics, SubjectPhysics, SubjectGeography, SubjectBiology}
	}
	return []Subject{SubjectChemistry, SubjectPolitics, SubjectHistory, SubjectGeography, SubjectBiology}
}

// String implements fmt.Stringer
func (t Track) String() string {
	return t.Key()
}

// MarshalText encodes the track as its key.
func (t Track) MarshalText() ([]byte, error) {
	if t != TrackScience && t != TrackHumanities {
		return nil, fmt.Errorf("invalid track: %d", int(t))
	}
	return []byte(t.Key()), nil
}

// UnmarshalText accepts "physics"/"science" or "history"/"humanities".
func (t *Track) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "physics", "science", "物理类":
		*t = TrackScience
	case "history", "humanities", "历史类":
		*t = TrackHumanities
	default:
		return fmt.Errorf("unknown track %q", string(text))
	}
	return nil
}

// CoreSubjects are the three subjects every composite starts from.
var CoreSubjects = []Subject{SubjectChinese, SubjectMath, SubjectEnglish}

// ElectiveSubjects are the six subjects assignment applies to by default.
var ElectiveSubjects = []Subject{
	SubjectPhysics, SubjectChemistry, SubjectBiology,
	SubjectPolitics, SubjectHistory, SubjectGeography,
}
