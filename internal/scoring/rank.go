package scoring

import (
	"sort"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// ScoreFunc extracts the value a population is ranked on.
type ScoreFunc func(r *domain.StudentRecord) float64

// SubjectScore ranks on one raw subject score.
func SubjectScore(s domain.Subject) ScoreFunc {
	return func(r *domain.StudentRecord) float64 { return r.Scores.Get(s) }
}

// Placement pairs a population index with its rank.
type Placement struct {
	Index int
	Rank  int
}

// Rank places every member of population with a positive score, best
// score first, and returns student ID -> 1-based rank. Members scoring 0
// are left out of the map entirely.
func Rank(population []*domain.StudentRecord, score ScoreFunc, policy TiePolicy) map[string]int {
	ranks := make(map[string]int, len(population))
	for _, p := range Order(population, score, policy) {
		ranks[population[p.Index].StudentID] = p.Rank
	}
	return ranks
}

// RankByClass ranks each class label separately.
func RankByClass(population []*domain.StudentRecord, score ScoreFunc, policy TiePolicy) map[string]int {
	ranks := make(map[string]int, len(population))
	for _, group := range groupByClass(population) {
		for id, rank := range Rank(group, score, policy) {
			ranks[id] = rank
		}
	}
	return ranks
}

// Order is the shared ranking kernel: the placed members of population,
// best first. The sort is stable so that under TieSequential equal scores
// keep their input order.
func Order(population []*domain.StudentRecord, score ScoreFunc, policy TiePolicy) []Placement {
	type entry struct {
		index int
		score float64
	}
	entries := make([]entry, 0, len(population))
	for i, r := range population {
		if v := score(r); v > 0 {
			entries = append(entries, entry{index: i, score: v})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	out := make([]Placement, len(entries))
	for i, e := range entries {
		rank := i + 1
		if policy == TieShared && i > 0 && e.score == entries[i-1].score {
			rank = out[i-1].Rank
		}
		out[i] = Placement{Index: e.index, Rank: rank}
	}
	return out
}

// assignRanks ranks population and stores each rank through set.
func assignRanks(population []*domain.StudentRecord, score ScoreFunc, policy TiePolicy, set func(r *domain.StudentRecord, rank int)) {
	for _, r := range population {
		set(r, 0)
	}
	for _, p := range Order(population, score, policy) {
		set(population[p.Index], p.Rank)
	}
}

// groupByClass splits population by class label, preserving input order
// inside each group. Groups come back ordered by first appearance.
func groupByClass(population []*domain.StudentRecord) [][]*domain.StudentRecord {
	index := make(map[string]int)
	var groups [][]*domain.StudentRecord
	for _, r := range population {
		i, ok := index[r.Class]
		if !ok {
			i = len(groups)
			index[r.Class] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

// groupByTrack splits population into science and humanities members.
func groupByTrack(population []*domain.StudentRecord) map[domain.Track][]*domain.StudentRecord {
	groups := make(map[domain.Track][]*domain.StudentRecord, 2)
	for _, r := range population {
		groups[r.Track] = append(groups[r.Track], r)
	}
	return groups
}
