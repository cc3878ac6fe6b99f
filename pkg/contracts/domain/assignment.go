package domain

// GradeBand maps a slice of the rank-percentile space onto a score range.
type GradeBand struct {
	Grade        string  `json:"grade" yaml:"grade" validate:"required,max=8"`
	Percentage   float64 `json:"percentage" yaml:"percentage" validate:"gte=0,lte=100"`
	ScoreCeiling float64 `json:"score_ceiling" yaml:"score_ceiling" validate:"gtefield=ScoreFloor"`
	ScoreFloor   float64 `json:"score_floor" yaml:"score_floor" validate:"gte=0"`
}

// AssignmentConfig is the externally edited grade-assignment setup.
// It is loaded once per computation run and never mutated by the core.
type AssignmentConfig struct {
	Enabled         bool        `json:"enabled" yaml:"enabled"`
	EnabledSubjects SubjectSet  `json:"enabled_subjects" yaml:"-"`
	Bands           []GradeBand `json:"bands" yaml:"bands" validate:"required_if=Enabled true,dive"`
}

// Active reports whether assignment should run at all.
func (c AssignmentConfig) Active() bool {
	return c.Enabled && !c.EnabledSubjects.Empty() && len(c.Bands) > 0
}

// TotalPercentage sums the band widths.
func (c AssignmentConfig) TotalPercentage() float64 {
	var sum float64
	for _, b := range c.Bands {
		sum += b.Percentage
	}
	return sum
}

// Clone returns a copy that does not share the band slice.
func (c AssignmentConfig) Clone() AssignmentConfig {
	bands := make([]GradeBand, len(c.Bands))
	copy(bands, c.Bands)
	c.Bands = bands
	return c
}

// DefaultAssignmentConfig returns the built-in five-grade table applied to
// the six elective subjects.
func DefaultAssignmentConfig() AssignmentConfig {
	return AssignmentConfig{
		Enabled:         true,
		EnabledSubjects: NewSubjectSet(ElectiveSubjects...),
		Bands: []GradeBand{
			{Grade: "A", Percentage: 15, ScoreCeiling: 95, ScoreFloor: 83},
			{Grade: "B", Percentage: 34, ScoreCeiling: 82, ScoreFloor: 71},
			{Grade: "C", Percentage: 34, ScoreCeiling: 70, ScoreFloor: 59},
			{Grade: "D", Percentage: 15, ScoreCeiling: 58, ScoreFloor: 41},
			{Grade: "E", Percentage: 2, ScoreCeiling: 40, ScoreFloor: 30},
		},
	}
}
