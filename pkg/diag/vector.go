package diag

import "math"

// Kind identifies one of the supported convergence diagnostics. It is a
// closed enum: every switch over Kind handles exactly these two values.
type Kind int

const (
	// Rhat is the potential scale reduction factor. Valid values are
	// strictly positive; values near 1 indicate converged chains.
	Rhat Kind = iota

	// NeffRatio is the ratio of effective sample size to total sample
	// size. Valid values lie in [0, 1]; higher is better.
	NeffRatio
)

// String returns the canonical lowercase name of the diagnostic.
func (k Kind) String() string {
	switch k {
	case Rhat:
		return "rhat"
	case NeffRatio:
		return "neff_ratio"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its canonical name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// constraint describes the domain constraint for error messages.
func (k Kind) constraint() string {
	switch k {
	case Rhat:
		return "value > 0"
	case NeffRatio:
		return "0 <= value <= 1"
	default:
		return "unknown"
	}
}

// inDomain reports whether a non-missing value satisfies the kind's
// domain constraint.
func (k Kind) inDomain(v float64) bool {
	switch k {
	case Rhat:
		return v > 0
	case NeffRatio:
		return v >= 0 && v <= 1
	default:
		return false
	}
}

// validateVector checks every non-missing value against the kind's domain
// constraint, then drops missing values (NaN). Order and the value↔name
// association of the surviving elements are preserved.
//
// names may be nil (unnamed vector) or must have the same length as values.
// Returns the cleaned values, the matching names (nil if the input was
// unnamed), and the number of missing entries dropped.
func validateVector(k Kind, values []float64, names []string) ([]float64, []string, int, error) {
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !k.inDomain(v) {
			arg := k.String()
			if i < len(names) && names[i] != "" {
				arg = names[i]
			}
			return nil, nil, 0, &ValidationError{Kind: k, Arg: arg, Index: i, Value: v}
		}
	}

	cleaned := make([]float64, 0, len(values))
	var cleanedNames []string
	if len(names) > 0 {
		cleanedNames = make([]string, 0, len(names))
	}
	dropped := 0
	for i, v := range values {
		if math.IsNaN(v) {
			dropped++
			continue
		}
		cleaned = append(cleaned, v)
		if cleanedNames != nil {
			cleanedNames = append(cleanedNames, names[i])
		}
	}
	return cleaned, cleanedNames, dropped, nil
}
