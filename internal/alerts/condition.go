package alerts

import (
	"strconv"
	"strings"

	"github.com/chainspect/chainspect/internal/store"
)

// evalCondition evaluates a rule condition string against a report.
//
// Supported expressions (field operator value):
//
//	rhat_max > 1.1
//	neff_ratio_min < 0.1
//	dropped > 0
//	state == divergent
//	state == suspect
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, rep *store.Report) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "state" {
		if op == "==" {
			return rep.Summary.State == rhs, 0
		}
		return false, 0
	}

	v, ok := numericField(field, rep)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the report summary.
func numericField(field string, rep *store.Report) (float64, bool) {
	switch field {
	case "rhat_max":
		return rep.Summary.MaxRhat, true
	case "neff_ratio_min":
		return rep.Summary.MinNeffRatio, true
	case "dropped":
		return float64(rep.Summary.Dropped), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
