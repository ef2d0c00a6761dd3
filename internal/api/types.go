package api

import (
	"github.com/chainspect/chainspect/internal/store"
	"github.com/chainspect/chainspect/pkg/diag"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State          string `json:"state"`
	RunCount       int    `json:"run_count"`
	ConvergedCount int    `json:"converged_count"`
	SuspectCount   int    `json:"suspect_count"`
	DivergentCount int    `json:"divergent_count"`
}

// RunResponse is one run entry in GET /api/v1/runs or /api/v1/runs/{id}.
type RunResponse struct {
	RunID      string        `json:"run_id"`
	ComputedAt string        `json:"computed_at"` // RFC3339
	Lags       int           `json:"lags"`
	Summary    store.Summary `json:"summary"`
}

// TableResponse is the payload for the rhat and neff table endpoints. The
// embedded table keeps the tidy column contract: records (value, label,
// bucket), levels, breaks (rhat only) and the dropped-missing count.
type TableResponse struct {
	RunID string               `json:"run_id"`
	Table *diag.DiagnosticTable `json:"table"`
}

// ACFResponse is the payload for GET /api/v1/runs/{id}/acf.
type ACFResponse struct {
	RunID   string                `json:"run_id"`
	Lags    int                   `json:"lags"`
	Records []diag.AutocorrRecord `json:"records"`
}

// SnapshotResponse is the full state pushed to WebSocket clients.
type SnapshotResponse struct {
	Runs        []RunDetail `json:"runs"`
	GeneratedAt string      `json:"generated_at"` // RFC3339
}

// RunDetail is one run with its full tables, used in the WebSocket push.
type RunDetail struct {
	RunResponse
	Rhat      *diag.DiagnosticTable `json:"rhat"`
	NeffRatio *diag.DiagnosticTable `json:"neff_ratio"`
	Autocorr  []diag.AutocorrRecord `json:"autocorr"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
