package engine

import (
	"fmt"
	"math"

	"github.com/nexuslab/vigil/pkg/models"
)

// EqualityTolerance is the float tolerance for the == and != operators.
// Sensor readings carry simulation noise well above this.
const EqualityTolerance = 1e-4

// EvaluateCondition reports whether value satisfies the threshold condition.
// thresholdMax only applies to the between operators; nil means it defaults
// to threshold, collapsing the range to a single tolerant point. An unknown
// operator evaluates to false and returns a ConfigError so the trigger never
// fires but evaluation of other nodes continues.
func EvaluateCondition(value float64, operator models.Operator, threshold float64, thresholdMax *float64) (bool, error) {
	switch operator {
	case models.OperatorGreaterThan:
		return value > threshold, nil
	case models.OperatorLessThan:
		return value < threshold, nil
	case models.OperatorGreaterOrEqual:
		return value >= threshold, nil
	case models.OperatorLessOrEqual:
		return value <= threshold, nil
	case models.OperatorEquals:
		return math.Abs(value-threshold) < EqualityTolerance, nil
	case models.OperatorNotEquals:
		return math.Abs(value-threshold) >= EqualityTolerance, nil
	case models.OperatorBetween:
		return inRange(value, threshold, thresholdMax), nil
	case models.OperatorNotBetween:
		return !inRange(value, threshold, thresholdMax), nil
	default:
		return false, &ConfigError{Field: "operator", Reason: fmt.Sprintf("unknown operator %q", operator)}
	}
}

// inRange is inclusive on both ends. When max is absent it defaults to min,
// and an inverted range (max < min) is never satisfied.
func inRange(value, min float64, max *float64) bool {
	upper := min
	if max != nil {
		upper = *max
	}

	return min <= value && value <= upper
}
