package diag

import (
	"math"
	"sort"
)

// RhatBreaks computes the axis reference lines for a validated Rhat vector.
//
// The sequence always starts at {1.0, 1.05}. Higher breaks are added only
// when the data reaches them, so well-behaved runs are not rendered against
// unused high gridlines while outlying chains still stay on scale:
//
//   - 1.10 when any value exceeds 1.05
//   - 1.5 when any value exceeds 1.5, and 2.0 when any value exceeds 2.0
//     (checked independently; both may be added)
//   - the maximum value rounded to two decimals, when it lies at least 0.1
//     beyond the current top break
//
// The result is ascending and duplicate-free.
func RhatBreaks(values []float64) []float64 {
	breaks := []float64{1.0, 1.05}
	if len(values) == 0 {
		return breaks
	}

	max := values[0]
	any105 := false
	any15 := false
	any20 := false
	for _, v := range values {
		if v > max {
			max = v
		}
		if v > 1.05 {
			any105 = true
		}
		if v > 1.5 {
			any15 = true
		}
		if v > 2.0 {
			any20 = true
		}
	}

	if any105 {
		breaks = append(breaks, 1.10)
	}
	if any15 {
		breaks = append(breaks, 1.5)
	}
	if any20 {
		breaks = append(breaks, 2.0)
	}
	if max >= breaks[len(breaks)-1]+0.1 {
		breaks = append(breaks, math.Round(max*100)/100)
	}

	return dedupAscending(breaks)
}

// dedupAscending sorts the slice ascending and removes duplicates in place.
func dedupAscending(xs []float64) []float64 {
	sort.Float64s(xs)
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
