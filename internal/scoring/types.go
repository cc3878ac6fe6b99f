package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline stage identifiers
const (
	StageIDClassify  = "classify"
	StageIDTotal     = "total"
	StageIDRank      = "rank"
	StageIDAssign    = "assign"
	StageIDRecompose = "recompose"
	StageIDRerank    = "rerank"
)

// Pipeline stage names
const (
	StageNameClassify  = "Track Classification"
	StageNameTotal     = "Composite Totals"
	StageNameRank      = "Ranking"
	StageNameAssign    = "Score Assignment"
	StageNameRecompose = "Assigned Composites"
	StageNameRerank    = "Assigned Ranking"
)

// ErrInvalidConfig is returned when an AssignmentConfig fails validation.
var ErrInvalidConfig = errors.New("invalid assignment config")

// PercentageTolerance is the allowed drift of the band widths from 100.
const PercentageTolerance = 0.01

// Variant selects raw or assigned scores when computing composites.
type Variant int

const (
	// Raw uses the scores as imported.
	Raw Variant = iota
	// Assigned substitutes the standardized score for every subject the
	// assignment config enabled.
	Assigned
)

// String implements fmt.Stringer
func (v Variant) String() string {
	if v == Assigned {
		return "assigned"
	}
	return "raw"
}

// TiePolicy decides how equal scores are placed.
type TiePolicy int

const (
	// TieSequential gives equal scores consecutive ranks in input order.
	TieSequential TiePolicy = iota
	// TieShared gives equal scores the same rank and skips the following
	// positions (1, 2, 2, 4).
	TieShared
)

// String implements fmt.Stringer
func (p TiePolicy) String() string {
	if p == TieShared {
		return "shared"
	}
	return "sequential"
}

// ParseTiePolicy parses "sequential" or "shared". Empty means sequential.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential":
		return TieSequential, nil
	case "shared":
		return TieShared, nil
	default:
		return TieSequential, fmt.Errorf("unknown tie policy %q", s)
	}
}
