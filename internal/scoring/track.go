package scoring

import "github.com/electroluxcode/score-analyzer/pkg/contracts/domain"

var (
	scienceGroup    = []domain.Subject{domain.SubjectPhysics, domain.SubjectChemistry, domain.SubjectBiology}
	humanitiesGroup = []domain.Subject{domain.SubjectPolitics, domain.SubjectHistory, domain.SubjectGeography}
)

// Classify derives the student's track from raw scores. The science group
// (physics, chemistry, biology) is compared against the humanities group
// (politics, history, geography); humanities wins only when strictly
// greater, so ties resolve to science.
func Classify(r *domain.StudentRecord) domain.Track {
	if groupSum(r.Scores, humanitiesGroup) > groupSum(r.Scores, scienceGroup) {
		return domain.TrackHumanities
	}
	return domain.TrackScience
}

func groupSum(scores domain.ScoreSet, group []domain.Subject) float64 {
	var sum float64
	for _, s := range group {
		sum += scores.Get(s)
	}
	return sum
}
