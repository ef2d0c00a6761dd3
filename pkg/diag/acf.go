package diag

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultLags is the max lag the line-style autocorrelation plot requests.
const DefaultLags = 20

// fallbackLags is applied when a caller passes a non-positive lag count.
const fallbackLags = 25

// Array is a three-dimensional draws array indexed by
// (iteration, chain, parameter), with parameter names attached. Chains are
// 0-based internally; record output carries them 1-based.
type Array struct {
	iterations int
	chains     int
	params     []string
	data       []float64
}

// NewArray allocates a zeroed draws array with the given dimensions.
// Chain and parameter counts must be at least 1.
func NewArray(iterations, chains int, parameters []string) (*Array, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("diag: array needs at least 1 iteration, got %d", iterations)
	}
	if chains < 1 {
		return nil, fmt.Errorf("diag: array needs at least 1 chain, got %d", chains)
	}
	if len(parameters) < 1 {
		return nil, fmt.Errorf("diag: array needs at least 1 parameter")
	}
	return &Array{
		iterations: iterations,
		chains:     chains,
		params:     parameters,
		data:       make([]float64, iterations*chains*len(parameters)),
	}, nil
}

// Iterations returns the number of draws per chain.
func (a *Array) Iterations() int { return a.iterations }

// Chains returns the number of chains.
func (a *Array) Chains() int { return a.chains }

// Parameters returns the parameter names. Callers must not modify the slice.
func (a *Array) Parameters() []string { return a.params }

// Set stores one draw. Indices are 0-based and must be in range.
func (a *Array) Set(iteration, chain, param int, v float64) {
	a.data[a.index(iteration, chain, param)] = v
}

// At returns one draw. Indices are 0-based and must be in range.
func (a *Array) At(iteration, chain, param int) float64 {
	return a.data[a.index(iteration, chain, param)]
}

func (a *Array) index(iteration, chain, param int) int {
	return (iteration*a.chains+chain)*len(a.params) + param
}

// series copies the 1-D draw sequence for one (chain, parameter) pair.
func (a *Array) series(chain, param int) []float64 {
	out := make([]float64, a.iterations)
	for t := 0; t < a.iterations; t++ {
		out[t] = a.At(t, chain, param)
	}
	return out
}

// AutocorrRecord is one row of the autocorrelation table: the sample ACF of
// one (chain, parameter) draw sequence at one lag.
type AutocorrRecord struct {
	Chain           int     `json:"chain"` // 1-based
	Parameter       string  `json:"parameter"`
	Lag             int     `json:"lag"`
	Autocorrelation float64 `json:"autocorrelation"`
}

// PrepareAutocorrelation computes the sample autocorrelation function at lags
// 0..lags for every (chain, parameter) pair in the draws array.
//
// A non-positive lags falls back to 25. The request must satisfy
// lags+1 < iterations, otherwise a ConfigurationError is returned.
//
// The output holds exactly chains × parameters × (lags+1) rows in canonical
// order: chain, then parameter, then lag, with all lags of one
// (chain, parameter) group contiguous. The lag-0 autocorrelation is 1
// identically. Groups are computed in parallel; each goroutine writes into
// its own pre-assigned slots, so the order never depends on scheduling.
func PrepareAutocorrelation(a *Array, lags int) ([]AutocorrRecord, error) {
	if lags <= 0 {
		lags = fallbackLags
	}
	if lags+1 >= a.iterations {
		return nil, &ConfigurationError{Arg: "lags", Lags: lags, Iterations: a.iterations}
	}

	nParams := len(a.params)
	perGroup := lags + 1
	records := make([]AutocorrRecord, a.chains*nParams*perGroup)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for chain := 0; chain < a.chains; chain++ {
		for param := 0; param < nParams; param++ {
			chain, param := chain, param
			g.Go(func() error {
				acf := sampleACF(a.series(chain, param), lags)
				base := (chain*nParams + param) * perGroup
				for lag := 0; lag <= lags; lag++ {
					records[base+lag] = AutocorrRecord{
						Chain:           chain + 1,
						Parameter:       a.params[param],
						Lag:             lag,
						Autocorrelation: acf[lag],
					}
				}
				return nil
			})
		}
	}
	g.Wait() //nolint:errcheck // workers never return errors

	return records, nil
}

// sampleACF computes the sample autocorrelation of xs at lags 0..lags using
// the biased autocovariance estimator normalized by the lag-0 variance:
//
//	c_k = (1/n) Σ_{t=0}^{n-k-1} (x_t − x̄)(x_{t+k} − x̄)
//	r_k = c_k / c_0
//
// so r_0 is exactly 1. A constant series has zero variance; its ACF is
// defined here as 1 at lag 0 and 0 elsewhere.
func sampleACF(xs []float64, lags int) []float64 {
	n := float64(len(xs))

	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= n

	dev := make([]float64, len(xs))
	var c0 float64
	for t, x := range xs {
		dev[t] = x - mean
		c0 += dev[t] * dev[t]
	}
	c0 /= n

	out := make([]float64, lags+1)
	out[0] = 1
	if c0 == 0 {
		return out
	}
	for k := 1; k <= lags; k++ {
		var ck float64
		for t := 0; t+k < len(xs); t++ {
			ck += dev[t] * dev[t+k]
		}
		ck /= n
		out[k] = ck / c0
	}
	return out
}
