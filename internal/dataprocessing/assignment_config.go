package dataprocessing

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/internal/scoring"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// EnabledFieldsPrefix starts the optional first line naming the subjects a
// config applies to.
const EnabledFieldsPrefix = "生效字段"

// ParseAssignmentConfig reads a grade table in the
// "grade,percentage,max,min" text format. The returned config is enabled.
func ParseAssignmentConfig(r io.Reader) (domain.AssignmentConfig, error) {
	cfg := domain.AssignmentConfig{Enabled: true}

	var (
		problems   []string
		sawContent bool
		subjects   domain.SubjectSet
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !sawContent {
			sawContent = true
			if rest, ok := cutFieldsHeader(line); ok {
				set, err := parseEnabledFields(rest)
				if err != nil {
					problems = append(problems, fmt.Sprintf("line %d: %v", lineNo, err))
				}
				subjects = set
				continue
			}
		}

		band, err := parseBandLine(line)
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		cfg.Bands = append(cfg.Bands, band)
	}
	if err := scanner.Err(); err != nil {
		return domain.AssignmentConfig{}, apierrors.NewParsingError("failed to read assignment config", err)
	}

	if len(problems) > 0 {
		return domain.AssignmentConfig{}, apierrors.NewAppValidationError("invalid assignment config").WithDetails(problems...)
	}
	if len(cfg.Bands) == 0 {
		return domain.AssignmentConfig{}, apierrors.NewAppValidationError("assignment config has no grade rules")
	}
	if sum := cfg.TotalPercentage(); math.Abs(sum-100) > scoring.PercentageTolerance {
		return domain.AssignmentConfig{}, apierrors.NewAppValidationError(
			fmt.Sprintf("grade percentages must sum to 100, got %s", formatNumber(sum)))
	}

	if subjects.Empty() {
		subjects = domain.NewSubjectSet(domain.ElectiveSubjects...)
	}
	cfg.EnabledSubjects = subjects
	return cfg, nil
}

// cutFieldsHeader recognises "生效字段:" (either colon width) and "enabled:".
func cutFieldsHeader(line string) (string, bool) {
	for _, prefix := range []string{EnabledFieldsPrefix, "enabled"} {
		if !strings.HasPrefix(strings.ToLower(line), prefix) {
			continue
		}
		rest := strings.TrimSpace(line[len(prefix):])
		for _, colon := range []string{":", "："} {
			if strings.HasPrefix(rest, colon) {
				return strings.TrimSpace(strings.TrimPrefix(rest, colon)), true
			}
		}
	}
	return "", false
}

func parseEnabledFields(list string) (domain.SubjectSet, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '，' || r == '、'
	})
	if len(fields) == 0 {
		return 0, nil
	}

	var set domain.SubjectSet
	for _, f := range fields {
		if s, err := domain.ParseSubject(f); err == nil {
			set = set.With(s)
		}
	}
	if set.Empty() {
		return 0, fmt.Errorf("no recognised subjects in %q", list)
	}
	return set, nil
}

func parseBandLine(line string) (domain.GradeBand, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return domain.GradeBand{}, fmt.Errorf("expected \"grade,percentage,max,min\", got %d fields", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	grade := parts[0]
	if grade == "" {
		return domain.GradeBand{}, fmt.Errorf("grade label is empty")
	}

	var nums [3]float64
	for i, raw := range parts[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.GradeBand{}, fmt.Errorf("percentage, max and min must be numbers")
		}
		nums[i] = v
	}
	percentage, ceiling, floor := nums[0], nums[1], nums[2]

	if percentage < 0 || percentage > 100 {
		return domain.GradeBand{}, fmt.Errorf("percentage must be between 0 and 100")
	}
	if ceiling < floor {
		return domain.GradeBand{}, fmt.Errorf("max score %s is below min score %s", formatNumber(ceiling), formatNumber(floor))
	}

	return domain.GradeBand{Grade: grade, Percentage: percentage, ScoreCeiling: ceiling, ScoreFloor: floor}, nil
}

// FormatAssignmentConfig writes cfg in the format ParseAssignmentConfig
// reads, using subject labels on the header line.
func FormatAssignmentConfig(w io.Writer, cfg domain.AssignmentConfig) error {
	bw := bufio.NewWriter(w)

	labels := make([]string, 0, domain.SubjectCount)
	for _, s := range cfg.EnabledSubjects.Subjects() {
		labels = append(labels, s.Label())
	}
	if _, err := fmt.Fprintf(bw, "%s:%s\n", EnabledFieldsPrefix, strings.Join(labels, " ")); err != nil {
		return err
	}

	for _, b := range cfg.Bands {
		if _, err := fmt.Fprintf(bw, "%s,%s,%s,%s\n", b.Grade,
			formatNumber(b.Percentage), formatNumber(b.ScoreCeiling), formatNumber(b.ScoreFloor)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
