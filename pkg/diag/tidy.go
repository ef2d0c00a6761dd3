package diag

import (
	"fmt"
	"sort"
	"strconv"
)

// DiagnosticRecord is one row of a prepared Rhat or NeffRatio table.
type DiagnosticRecord struct {
	Value  float64 `json:"value"`
	Label  string  `json:"label"`
	Bucket Bucket  `json:"bucket"`
}

// DiagnosticTable is the tidy output handed to the rendering collaborator.
// Records stay in input order; Levels carries the labels sorted by ascending
// value so a renderer can order its axis without re-sorting the rows.
//
// The column contract is fixed per Kind: every call with the same Kind
// produces the same columns with the same types.
type DiagnosticTable struct {
	Kind    Kind               `json:"kind"`
	Records []DiagnosticRecord `json:"records"`
	Levels  []string           `json:"levels"`

	// Breaks holds the axis reference lines. Populated for Rhat only.
	Breaks []float64 `json:"breaks,omitempty"`

	// Dropped is the number of missing values removed during validation.
	// Non-zero Dropped is the caller's cue to surface a warning; it never
	// fails the preparation.
	Dropped int `json:"dropped"`
}

// PrepareRhat validates an Rhat vector, classifies it against the default
// {1.05, 1.10} breakpoints and attaches the adaptive break scale.
//
// names may be nil; when present it must be parallel to values. Missing
// values (NaN) are dropped and counted, any value ≤ 0 yields a
// *ValidationError.
func PrepareRhat(values []float64, names []string) (*DiagnosticTable, error) {
	return prepare(Rhat, values, names, Rhat.DefaultBreakpoints())
}

// PrepareNeffRatio validates an effective-sample-size ratio vector and
// classifies it against the default {0.10, 0.50} breakpoints. The bucket
// tags follow the numeric rule only; for this diagnostic a numerically
// "high" value is the good end, and the renderer inverts the shade order.
func PrepareNeffRatio(values []float64, names []string) (*DiagnosticTable, error) {
	return prepare(NeffRatio, values, names, NeffRatio.DefaultBreakpoints())
}

// PrepareWith is PrepareRhat/PrepareNeffRatio with caller-supplied
// breakpoints, for configurations that override the defaults.
func PrepareWith(k Kind, values []float64, names []string, bp Breakpoints) (*DiagnosticTable, error) {
	return prepare(k, values, names, bp)
}

func prepare(k Kind, values []float64, names []string, bp Breakpoints) (*DiagnosticTable, error) {
	if names != nil && len(names) != len(values) {
		return nil, fmt.Errorf("diag: %d names for %d values", len(names), len(values))
	}
	if bp.Low >= bp.High {
		return nil, fmt.Errorf("diag: breakpoints must ascend, got {%g, %g}", bp.Low, bp.High)
	}

	cleaned, cleanedNames, dropped, err := validateVector(k, values, names)
	if err != nil {
		return nil, err
	}

	labels := rowLabels(cleaned, cleanedNames)
	buckets := Classify(cleaned, bp)

	records := make([]DiagnosticRecord, len(cleaned))
	for i, v := range cleaned {
		records[i] = DiagnosticRecord{Value: v, Label: labels[i], Bucket: buckets[i]}
	}

	t := &DiagnosticTable{
		Kind:    k,
		Records: records,
		Levels:  levels(cleaned, labels),
		Dropped: dropped,
	}
	if k == Rhat {
		t.Breaks = RhatBreaks(cleaned)
	}
	return t, nil
}

// rowLabels returns the display label for each row: the attached name, or a
// synthetic 1-based index for unnamed vectors.
func rowLabels(values []float64, names []string) []string {
	labels := make([]string, len(values))
	for i := range values {
		if i < len(names) && names[i] != "" {
			labels[i] = names[i]
		} else {
			labels[i] = strconv.Itoa(i + 1)
		}
	}
	return labels
}

// levels orders the labels by ascending value. Ties keep input order.
func levels(values []float64, labels []string) []string {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
