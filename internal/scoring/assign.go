package scoring

import (
	"math"
	"sort"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// percentileEpsilon absorbs float drift when fractional band widths are
// accumulated.
const percentileEpsilon = 1e-9

// AssignScore converts a raw score into its assigned score.
//
// rank is the 1-based placement of raw among total scored students and
// population holds the raw scores of that population in any order. The
// band whose cumulative percentile range contains rank/total*100 is
// selected, the raw scores occupying that range give the interpolation
// domain [X1, X2], and raw is mapped linearly onto [ScoreFloor,
// ScoreCeiling]. Absent scores and empty populations yield 0.
func AssignScore(raw float64, rank, total int, bands []domain.GradeBand, population []float64) float64 {
	sorted := sortedDescending(population)
	return assignSorted(raw, rank, total, bands, sorted)
}

// AssignSubject assigns every student with a positive score in subject s.
// Ranks are computed at grade scope under policy. The result is keyed by
// student ID; students without a score are absent from the map.
func AssignSubject(students []*domain.StudentRecord, s domain.Subject, bands []domain.GradeBand, policy TiePolicy) map[string]float64 {
	out := make(map[string]float64, len(students))
	forEachAssigned(students, s, bands, policy, func(r *domain.StudentRecord, v float64) {
		out[r.StudentID] = v
	})
	return out
}

// forEachAssigned ranks the subject population once and hands every
// placed student its assigned score.
func forEachAssigned(students []*domain.StudentRecord, s domain.Subject, bands []domain.GradeBand, policy TiePolicy, fn func(r *domain.StudentRecord, v float64)) {
	score := SubjectScore(s)
	order := Order(students, score, policy)
	if len(order) == 0 {
		return
	}
	sorted := make([]float64, len(order))
	for i, p := range order {
		sorted[i] = score(students[p.Index])
	}
	for _, p := range order {
		r := students[p.Index]
		fn(r, assignSorted(score(r), p.Rank, len(order), bands, sorted))
	}
}

// assignSorted is AssignScore over scores already sorted best first.
func assignSorted(raw float64, rank, total int, bands []domain.GradeBand, sorted []float64) float64 {
	if total <= 0 || raw <= 0 || len(bands) == 0 || len(sorted) == 0 {
		return 0
	}

	// Multiplying before dividing keeps exact band edges exact: rank 15
	// of 100 must land on 15, not 15.000000000000002.
	percentile := float64(rank) * 100 / float64(total)

	var cumulative float64
	for _, band := range bands {
		cumulative += band.Percentage
		if percentile > cumulative+percentileEpsilon {
			continue
		}

		rangeStart := cumulative - band.Percentage
		startIdx := clampIndex(int(math.Floor(rangeStart*float64(total)/100)), len(sorted))
		endIdx := clampIndex(int(math.Ceil(cumulative*float64(total)/100))-1, len(sorted))

		x2 := sorted[startIdx]
		x1 := sorted[endIdx]
		y2 := band.ScoreCeiling
		y1 := band.ScoreFloor

		switch {
		case raw >= x2:
			return y2
		case raw <= x1:
			return y1
		case x2 == x1:
			return (y1 + y2) / 2
		}
		return y1 + (y2-y1)/(x2-x1)*(raw-x1)
	}

	return bands[len(bands)-1].ScoreFloor
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func sortedDescending(scores []float64) []float64 {
	out := make([]float64, 0, len(scores))
	for _, v := range scores {
		if v > 0 {
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
