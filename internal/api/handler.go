package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/chainspect/chainspect/internal/alerts"
	"github.com/chainspect/chainspect/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads diagnostic reports from the store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given store and alert engine and
// registers all routes.
func New(st *store.Store, eng *alerts.Engine) http.Handler {
	h := &Handler{store: st, alerts: eng, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/runs", h.listRuns)
	h.mux.HandleFunc("/api/v1/runs/", h.runSubtree) // extracts {id} and table kind
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — convergence rollup across live runs.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{
		State:    store.StateUnknown,
		RunCount: len(entries),
	}
	for _, e := range entries {
		switch e.Report.Summary.State {
		case store.StateConverged:
			resp.ConvergedCount++
		case store.StateSuspect:
			resp.SuspectCount++
		case store.StateDivergent:
			resp.DivergentCount++
		}
	}
	switch {
	case resp.DivergentCount > 0:
		resp.State = store.StateDivergent
	case resp.SuspectCount > 0:
		resp.State = store.StateSuspect
	case resp.ConvergedCount > 0:
		resp.State = store.StateConverged
	}
	jsonResp(w, http.StatusOK, resp)
}

// listRuns returns GET /api/v1/runs — summaries of all live runs.
func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]RunResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toRunResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// runSubtree dispatches /api/v1/runs/{id} and /api/v1/runs/{id}/{table}.
func (h *Handler) runSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if rest == "" {
		h.listRuns(w, r)
		return
	}
	id, table, _ := strings.Cut(rest, "/")

	e, ok := h.store.Get(id)
	if !ok || time.Since(e.UpdatedAt) > h.store.TTL() {
		// Stale entries are treated as not found.
		jsonErr(w, http.StatusNotFound, "run not found")
		return
	}

	switch table {
	case "":
		jsonResp(w, http.StatusOK, toRunResponse(e))
	case "rhat":
		jsonResp(w, http.StatusOK, TableResponse{RunID: id, Table: e.Report.Rhat})
	case "neff":
		jsonResp(w, http.StatusOK, TableResponse{RunID: id, Table: e.Report.NeffRatio})
	case "acf":
		jsonResp(w, http.StatusOK, ACFResponse{
			RunID:   id,
			Lags:    e.Report.Lags,
			Records: e.Report.Autocorr,
		})
	default:
		jsonErr(w, http.StatusNotFound, "unknown table "+table)
	}
}

// listAlerts returns GET /api/v1/alerts — active and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// --- helpers ----------------------------------------------------------------

// BuildSnapshot assembles the full-detail payload the WebSocket hub pushes.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	runs := make([]RunDetail, 0, len(entries))
	for _, e := range entries {
		runs = append(runs, RunDetail{
			RunResponse: toRunResponse(e),
			Rhat:        e.Report.Rhat,
			NeffRatio:   e.Report.NeffRatio,
			Autocorr:    e.Report.Autocorr,
		})
	}
	return SnapshotResponse{
		Runs:        runs,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func toRunResponse(e *store.Entry) RunResponse {
	return RunResponse{
		RunID:      e.Report.RunID,
		ComputedAt: e.Report.ComputedAt.UTC().Format(time.RFC3339),
		Lags:       e.Report.Lags,
		Summary:    e.Report.Summary,
	}
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
