package scoring

import (
	"context"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// Stage is one transform of the per-exam pipeline.
type Stage interface {
	// ID returns the stable stage identifier.
	ID() string

	// Name returns the human-readable stage name.
	Name() string

	// Apply transforms the run state in place.
	Apply(ctx context.Context, st *runState) error
}

// runState is the working copy one pipeline run owns.
type runState struct {
	snapshot domain.ExamSnapshot
	students []*domain.StudentRecord
	config   domain.AssignmentConfig
	policy   TiePolicy
}

func newRunState(snap domain.ExamSnapshot, cfg domain.AssignmentConfig, policy TiePolicy) *runState {
	st := &runState{
		snapshot: snap.Clone(),
		config:   cfg,
		policy:   policy,
	}
	st.students = make([]*domain.StudentRecord, len(st.snapshot.Students))
	for i := range st.snapshot.Students {
		st.students[i] = &st.snapshot.Students[i]
	}
	return st
}

// baseStages run on every snapshot.
func baseStages() []Stage {
	return []Stage{classifyStage{}, totalStage{}, rankStage{}}
}

// assignmentStages run only when the config is active.
func assignmentStages() []Stage {
	return []Stage{assignStage{}, recomposeStage{}, rerankStage{}}
}

type classifyStage struct{}

func (classifyStage) ID() string   { return StageIDClassify }
func (classifyStage) Name() string { return StageNameClassify }

func (classifyStage) Apply(_ context.Context, st *runState) error {
	for _, r := range st.students {
		r.Track = Classify(r)
	}
	return nil
}

type totalStage struct{}

func (totalStage) ID() string   { return StageIDTotal }
func (totalStage) Name() string { return StageNameTotal }

func (totalStage) Apply(_ context.Context, st *runState) error {
	for _, r := range st.students {
		r.Total = NineTotal(r, Raw)
		r.FourTotal = fourTotal(r, r.Track, Raw)
		r.SixTotal = r.FourTotal + topTwoElectives(r, r.Track, Raw)
	}
	return nil
}

type rankStage struct{}

func (rankStage) ID() string   { return StageIDRank }
func (rankStage) Name() string { return StageNameRank }

func (rankStage) Apply(_ context.Context, st *runState) error {
	rankAll(st, rankTarget{
		subject: SubjectScore,
		total:   func(r *domain.StudentRecord) float64 { return r.Total },
		four:    func(r *domain.StudentRecord) float64 { return r.FourTotal },
		six:     func(r *domain.StudentRecord) float64 { return r.SixTotal },
		grade:   func(r *domain.StudentRecord) *domain.RankSet { return &r.GradeRanks },
		class:   func(r *domain.StudentRecord) *domain.RankSet { return &r.ClassRanks },
	})
	return nil
}

type assignStage struct{}

func (assignStage) ID() string   { return StageIDAssign }
func (assignStage) Name() string { return StageNameAssign }

func (assignStage) Apply(ctx context.Context, st *runState) error {
	for _, r := range st.students {
		r.Assigned = &domain.AssignedScores{Enabled: st.config.EnabledSubjects}
	}
	for _, s := range st.config.EnabledSubjects.Subjects() {
		if err := ctx.Err(); err != nil {
			return err
		}
		forEachAssigned(st.students, s, st.config.Bands, st.policy, func(r *domain.StudentRecord, v float64) {
			r.Assigned.Scores.Set(s, v)
		})
	}
	return nil
}

type recomposeStage struct{}

func (recomposeStage) ID() string   { return StageIDRecompose }
func (recomposeStage) Name() string { return StageNameRecompose }

func (recomposeStage) Apply(_ context.Context, st *runState) error {
	for _, r := range st.students {
		a := r.Assigned
		a.Total = NineTotal(r, Assigned)
		a.FourTotal = fourTotal(r, r.Track, Assigned)
		a.SixTotal = a.FourTotal + topTwoElectives(r, r.Track, Assigned)
	}
	return nil
}

type rerankStage struct{}

func (rerankStage) ID() string   { return StageIDRerank }
func (rerankStage) Name() string { return StageNameRerank }

func (rerankStage) Apply(_ context.Context, st *runState) error {
	rankAll(st, rankTarget{
		subject: func(s domain.Subject) ScoreFunc {
			return func(r *domain.StudentRecord) float64 { return EffectiveScore(r, s, Assigned) }
		},
		total: func(r *domain.StudentRecord) float64 { return r.Assigned.Total },
		four:  func(r *domain.StudentRecord) float64 { return r.Assigned.FourTotal },
		six:   func(r *domain.StudentRecord) float64 { return r.Assigned.SixTotal },
		grade: func(r *domain.StudentRecord) *domain.RankSet { return &r.Assigned.GradeRanks },
		class: func(r *domain.StudentRecord) *domain.RankSet { return &r.Assigned.ClassRanks },
	})
	return nil
}

// rankTarget tells rankAll what to rank and where the ranks go.
type rankTarget struct {
	subject          func(s domain.Subject) ScoreFunc
	total, four, six ScoreFunc
	grade, class     func(r *domain.StudentRecord) *domain.RankSet
}

// rankAll fills grade and class ranks for every subject and composite.
// Four- and six-subject composites are only comparable inside a track,
// so they are ranked per track (and per class within a track).
func rankAll(st *runState, t rankTarget) {
	classes := groupByClass(st.students)
	tracks := groupByTrack(st.students)

	rankBoth := func(pop []*domain.StudentRecord, byClass [][]*domain.StudentRecord, score ScoreFunc, set func(rs *domain.RankSet, rank int)) {
		assignRanks(pop, score, st.policy, func(r *domain.StudentRecord, rank int) { set(t.grade(r), rank) })
		for _, group := range byClass {
			assignRanks(group, score, st.policy, func(r *domain.StudentRecord, rank int) { set(t.class(r), rank) })
		}
	}

	for _, s := range domain.AllSubjects() {
		s := s
		rankBoth(st.students, classes, t.subject(s), func(rs *domain.RankSet, rank int) { rs.Subjects[s] = rank })
	}
	rankBoth(st.students, classes, t.total, func(rs *domain.RankSet, rank int) { rs.Total = rank })

	for _, track := range domain.Tracks() {
		pop := tracks[track]
		if len(pop) == 0 {
			continue
		}
		byClass := groupByClass(pop)
		rankBoth(pop, byClass, t.four, func(rs *domain.RankSet, rank int) { rs.FourTotal = rank })
		rankBoth(pop, byClass, t.six, func(rs *domain.RankSet, rank int) { rs.SixTotal = rank })
	}
}
