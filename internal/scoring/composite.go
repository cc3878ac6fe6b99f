package scoring

import (
	"sort"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// EffectiveScore returns the score a composite should use for subject s.
// The assigned variant substitutes the standardized score only for
// subjects the assignment enabled; everything else stays raw.
func EffectiveScore(r *domain.StudentRecord, s domain.Subject, v Variant) float64 {
	if v == Assigned && r.Assigned != nil && r.Assigned.Enabled.Has(s) {
		return r.Assigned.Scores.Get(s)
	}
	return r.Scores.Get(s)
}

// FourTotal is Chinese + Math + English + the track anchor (physics for
// science, history for humanities).
func FourTotal(r *domain.StudentRecord, v Variant) float64 {
	return fourTotal(r, Classify(r), v)
}

// SixTotal is FourTotal plus the two highest scores of the track's
// elective pool. Missing contributors count as 0.
func SixTotal(r *domain.StudentRecord, v Variant) float64 {
	track := Classify(r)
	return fourTotal(r, track, v) + topTwoElectives(r, track, v)
}

// NineTotal sums all nine subjects.
func NineTotal(r *domain.StudentRecord, v Variant) float64 {
	var total float64
	for _, s := range domain.AllSubjects() {
		total += EffectiveScore(r, s, v)
	}
	return total
}

func fourTotal(r *domain.StudentRecord, track domain.Track, v Variant) float64 {
	var total float64
	for _, s := range domain.CoreSubjects {
		total += EffectiveScore(r, s, v)
	}
	return total + EffectiveScore(r, track.Anchor(), v)
}

func topTwoElectives(r *domain.StudentRecord, track domain.Track, v Variant) float64 {
	pool := track.Electives()
	scores := make([]float64, len(pool))
	for i, s := range pool {
		scores[i] = EffectiveScore(r, s, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	return scores[0] + scores[1]
}
