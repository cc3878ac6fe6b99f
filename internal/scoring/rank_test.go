package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

func TestRank(t *testing.T) {
	math := func(v float64) scores { return scores{domain.SubjectMath: v} }

	tests := []struct {
		name     string
		students []domain.StudentRecord
		policy   TiePolicy
		want     map[string]int
	}{
		{
			name: "descending with absent excluded",
			students: []domain.StudentRecord{
				student("a", "1", math(90)), student("b", "1", math(80)),
				student("c", "1", math(0)), student("d", "1", math(70)),
			},
			want: map[string]int{"a": 1, "b": 2, "d": 3},
		},
		{
			name: "sequential ties keep input order",
			students: []domain.StudentRecord{
				student("a", "1", math(80)), student("b", "1", math(90)), student("c", "1", math(80)),
			},
			policy: TieSequential,
			want:   map[string]int{"b": 1, "a": 2, "c": 3},
		},
		{
			name: "shared ties skip positions",
			students: []domain.StudentRecord{
				student("a", "1", math(80)), student("b", "1", math(90)),
				student("c", "1", math(80)), student("d", "1", math(70)),
			},
			policy: TieShared,
			want:   map[string]int{"b": 1, "a": 2, "c": 2, "d": 4},
		},
		{
			name:     "empty population",
			students: nil,
			want:     map[string]int{},
		},
		{
			name: "everyone absent",
			students: []domain.StudentRecord{
				student("a", "1", math(0)), student("b", "1", math(0)),
			},
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(pointers(tt.students), SubjectScore(domain.SubjectMath), tt.policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankByClass(t *testing.T) {
	students := []domain.StudentRecord{
		student("a", "1", scores{domain.SubjectChinese: 70}),
		student("b", "2", scores{domain.SubjectChinese: 95}),
		student("c", "1", scores{domain.SubjectChinese: 88}),
		student("d", "2", scores{domain.SubjectChinese: 60}),
		student("e", "2", scores{domain.SubjectChinese: 0}),
	}

	got := RankByClass(pointers(students), SubjectScore(domain.SubjectChinese), TieSequential)
	assert.Equal(t, map[string]int{"c": 1, "a": 2, "b": 1, "d": 2}, got)
}

func TestRankMonotonicity(t *testing.T) {
	snap := generatedExam(3, 60)
	pop := pointers(snap.Students)

	for _, s := range domain.AllSubjects() {
		ranks := Rank(pop, SubjectScore(s), TieSequential)
		placed := 0
		for _, a := range pop {
			va := a.Scores.Get(s)
			ra, ok := ranks[a.StudentID]
			if va <= 0 {
				assert.False(t, ok, "absent score must not be ranked")
				continue
			}
			placed++
			for _, b := range pop {
				if vb := b.Scores.Get(s); vb > 0 && va > vb {
					assert.Less(t, ra, ranks[b.StudentID])
				}
			}
		}
		for _, r := range ranks {
			assert.GreaterOrEqual(t, r, 1)
			assert.LessOrEqual(t, r, placed)
		}
	}
}
