// Package diag prepares MCMC convergence diagnostics for rendering.
//
// It turns raw diagnostic vectors (potential scale reduction factor Rhat,
// effective-sample-size ratio) and raw draws arrays into flat, classified
// record tables that a plotting frontend can map straight onto visual
// channels, without any diagnostic-specific branching on its side.
//
// vector.go validates raw input against per-diagnostic domain constraints
// and strips missing values (encoded as NaN). classify.go buckets validated
// values into three ordered severity tags using two breakpoints. breaks.go
// derives the data-adaptive axis reference lines for the Rhat plot. acf.go
// computes the grouped sample autocorrelation function over a
// (iteration, chain, parameter) draws array. tidy.go assembles the final
// tables.
//
// Everything here is pure: no global state, no I/O, no logging. Dropped
// missing values are reported as a count on the result so the caller can
// surface a warning.
package diag
