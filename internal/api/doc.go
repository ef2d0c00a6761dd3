// Package api serves the diagnostic report store as a JSON HTTP API.
//
// Routes (all GET):
//
//	/api/v1/health          — convergence rollup across live runs
//	/api/v1/runs            — summaries of all live runs
//	/api/v1/runs/{id}       — one run's summary
//	/api/v1/runs/{id}/rhat  — prepared Rhat table + break scale
//	/api/v1/runs/{id}/neff  — prepared effective-sample-size ratio table
//	/api/v1/runs/{id}/acf   — autocorrelation records
//	/api/v1/alerts          — active alerts
//
// Table payloads follow the tidy column contract of pkg/diag unchanged, so
// a rendering frontend maps columns to visual channels without
// diagnostic-specific branching. Optional API-key authentication is applied
// as middleware around the whole mux.
package api
