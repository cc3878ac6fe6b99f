package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks an assignment config before a run. Disabled
// configs only need well-formed bands; enabled ones must also cover the
// full percentile space.
func ValidateConfig(cfg domain.AssignmentConfig) error {
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describeValidation(err))
	}
	if !cfg.Enabled {
		return nil
	}
	if sum := cfg.TotalPercentage(); math.Abs(sum-100) > PercentageTolerance {
		return fmt.Errorf("%w: band percentages sum to %.2f, want 100", ErrInvalidConfig, sum)
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
