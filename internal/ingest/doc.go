// Package ingest reads sampler output from disk into the in-memory forms
// pkg/diag consumes.
//
// A run directory holds one CSV of draws per chain (chain_1.csv,
// chain_2.csv, … — rows are iterations, columns are named parameters) plus a
// summary.csv of per-parameter convergence diagnostics (parameter, rhat,
// neff_ratio). Lines starting with '#' are sampler comments and skipped.
// Missing diagnostic values may be written as "NA" or left empty; they are
// carried through as NaN so the preparation step can drop and count them.
// Missing draws, by contrast, are a hard parse error — the autocorrelation
// path has no missing-value semantics.
//
// Watch triggers a re-read when any file in the run directory changes.
package ingest
