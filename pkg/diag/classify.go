package diag

// Bucket is the directionless three-level tag assigned to every diagnostic
// value. The tag follows the numeric ordering only: whether "low" is good or
// bad depends on the diagnostic (low Rhat is good, low NeffRatio is bad),
// and that mapping belongs to the consumer, not to the classifier.
type Bucket string

const (
	BucketLow  Bucket = "low"
	BucketOk   Bucket = "ok"
	BucketHigh Bucket = "high"
)

// Breakpoints are the two ascending cut points that split the value range
// into the three buckets.
type Breakpoints struct {
	// Low is the upper bound of the "low" bucket (inclusive).
	Low float64

	// High is the upper bound of the "ok" bucket (inclusive).
	High float64
}

// DefaultBreakpoints returns the conventional cut points for the diagnostic:
// {1.05, 1.10} for Rhat, {0.10, 0.50} for NeffRatio.
func (k Kind) DefaultBreakpoints() Breakpoints {
	switch k {
	case NeffRatio:
		return Breakpoints{Low: 0.10, High: 0.50}
	default:
		return Breakpoints{Low: 1.05, High: 1.10}
	}
}

// Classify assigns each value to one of the three ordered buckets.
// Intervals are closed on the left of each upper interval: a value exactly
// on a breakpoint falls into the lower bucket.
func Classify(values []float64, bp Breakpoints) []Bucket {
	out := make([]Bucket, len(values))
	for i, v := range values {
		out[i] = bucketOf(v, bp)
	}
	return out
}

func bucketOf(v float64, bp Breakpoints) Bucket {
	switch {
	case v <= bp.Low:
		return BucketLow
	case v <= bp.High:
		return BucketOk
	default:
		return BucketHigh
	}
}
