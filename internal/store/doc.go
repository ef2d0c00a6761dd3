// Package store holds the latest diagnostic report per monitored run.
//
// report.go defines the Report bundle (prepared Rhat/NeffRatio tables,
// autocorrelation records, summary scalars) and the convergence-state
// rollup, including the severity inversion between the two diagnostics: a
// numerically low Rhat bucket is the good end, a numerically low NeffRatio
// bucket is the bad end.
//
// store.go is a thread-safe TTL store keyed by run ID with a background
// eviction loop and an injectable clock for deterministic tests.
package store
