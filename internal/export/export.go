package export

import (
	"log/slog"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/chainspect/chainspect/internal/store"
)

// Handler renders the report store as a Prometheus text exposition.
type Handler struct {
	store *store.Store
}

// New creates a Handler reading live reports from st.
func New(st *store.Store) *Handler {
	return &Handler{store: st}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range h.collect() {
		// The text encoder rejects a family with no samples.
		if len(mf.Metric) == 0 {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			// Headers are already out; all we can do is log and stop.
			slog.Error("export: encode metric family", "family", mf.GetName(), "error", err)
			return
		}
	}
}

// collect builds the metric families from every live (non-stale) report.
func (h *Handler) collect() []*dto.MetricFamily {
	rhat := gaugeFamily("chainspect_rhat",
		"Split Rhat statistic per run and parameter.")
	neff := gaugeFamily("chainspect_neff_ratio",
		"Effective sample size ratio per run and parameter.")
	worst := gaugeFamily("chainspect_worst_bucket",
		"Convergence rollup per run: 0 converged, 1 suspect, 2 divergent.")
	dropped := gaugeFamily("chainspect_dropped_values",
		"Missing diagnostic values removed on the run's last read.")

	ttl := h.store.TTL()
	for _, e := range h.store.List() {
		if time.Since(e.UpdatedAt) > ttl {
			continue
		}
		rep := e.Report

		for _, rec := range rep.Rhat.Records {
			addGauge(rhat, rec.Value, "run", rep.RunID, "parameter", rec.Label)
		}
		for _, rec := range rep.NeffRatio.Records {
			addGauge(neff, rec.Value, "run", rep.RunID, "parameter", rec.Label)
		}
		if sev, ok := stateSeverity(rep.Summary.State); ok {
			addGauge(worst, float64(sev), "run", rep.RunID)
		}
		addGauge(dropped, float64(rep.Summary.Dropped), "run", rep.RunID)
	}

	return []*dto.MetricFamily{rhat, neff, worst, dropped}
}

// stateSeverity maps a convergence state to its exported rank. An unknown
// state (empty tables) has no rollup to export.
func stateSeverity(state string) (int, bool) {
	switch state {
	case store.StateConverged:
		return 0, true
	case store.StateSuspect:
		return 1, true
	case store.StateDivergent:
		return 2, true
	default:
		return 0, false
	}
}

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// addGauge appends one gauge sample to mf. Labels come as name/value pairs.
func addGauge(mf *dto.MetricFamily, value float64, labels ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(value)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	mf.Metric = append(mf.Metric, m)
}
