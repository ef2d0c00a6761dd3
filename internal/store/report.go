package store

import (
	"time"

	"github.com/chainspect/chainspect/pkg/diag"
)

// Convergence states derived from the worst bucket across both diagnostics.
const (
	StateConverged = "converged"
	StateSuspect   = "suspect"
	StateDivergent = "divergent"
	StateUnknown   = "unknown"
)

// Report is the full diagnostic output for one run at one point in time.
// Reports are immutable once built; a new read of the run produces a new
// Report.
type Report struct {
	RunID      string
	ComputedAt time.Time

	// Rhat and NeffRatio are the prepared tidy tables. Rhat carries the
	// adaptive break scale.
	Rhat      *diag.DiagnosticTable
	NeffRatio *diag.DiagnosticTable

	// Autocorr holds the flat (chain, parameter, lag) records.
	Autocorr []diag.AutocorrRecord

	// Lags is the max lag Autocorr was computed to.
	Lags int

	Summary Summary
}

// Summary is the scalar rollup the alert engine and the /metrics exposition
// consume.
type Summary struct {
	MaxRhat        float64 `json:"rhat_max"`
	WorstRhatParam string  `json:"rhat_worst_parameter"`
	MinNeffRatio   float64 `json:"neff_ratio_min"`
	WorstNeffParam string  `json:"neff_ratio_worst_parameter"`

	// Dropped is the total number of missing diagnostic values removed
	// across both tables.
	Dropped int `json:"dropped"`

	// State is the convergence rollup: the worst severity across both
	// diagnostics mapped to converged | suspect | divergent.
	State string `json:"state"`
}

// NewReport bundles prepared tables into a Report and derives the summary.
func NewReport(runID string, at time.Time, rhat, neff *diag.DiagnosticTable, acf []diag.AutocorrRecord, lags int) *Report {
	r := &Report{
		RunID:      runID,
		ComputedAt: at,
		Rhat:       rhat,
		NeffRatio:  neff,
		Autocorr:   acf,
		Lags:       lags,
	}
	r.Summary = summarize(rhat, neff)
	return r
}

// summarize extracts the worst value of each diagnostic and the overall
// convergence state.
func summarize(rhat, neff *diag.DiagnosticTable) Summary {
	s := Summary{State: StateUnknown}

	worst := -1
	for _, rec := range rhat.Records {
		if s.WorstRhatParam == "" || rec.Value > s.MaxRhat {
			s.MaxRhat = rec.Value
			s.WorstRhatParam = rec.Label
		}
		if sev := Severity(diag.Rhat, rec.Bucket); sev > worst {
			worst = sev
		}
	}
	for _, rec := range neff.Records {
		if s.WorstNeffParam == "" || rec.Value < s.MinNeffRatio {
			s.MinNeffRatio = rec.Value
			s.WorstNeffParam = rec.Label
		}
		if sev := Severity(diag.NeffRatio, rec.Bucket); sev > worst {
			worst = sev
		}
	}

	s.Dropped = rhat.Dropped + neff.Dropped

	switch worst {
	case 0:
		s.State = StateConverged
	case 1:
		s.State = StateSuspect
	case 2:
		s.State = StateDivergent
	}
	return s
}

// Severity maps a directionless bucket tag to a severity rank: 0 good,
// 1 borderline, 2 bad. The direction differs per diagnostic — low Rhat is
// good, low NeffRatio is bad — and this is the single place that inversion
// is encoded.
func Severity(k diag.Kind, b diag.Bucket) int {
	if k == diag.NeffRatio {
		switch b {
		case diag.BucketHigh:
			return 0
		case diag.BucketOk:
			return 1
		default:
			return 2
		}
	}
	switch b {
	case diag.BucketLow:
		return 0
	case diag.BucketOk:
		return 1
	default:
		return 2
	}
}
