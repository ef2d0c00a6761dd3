package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainspect/chainspect/internal/alerts"
	"github.com/chainspect/chainspect/internal/api"
	"github.com/chainspect/chainspect/internal/config"
	"github.com/chainspect/chainspect/internal/export"
	"github.com/chainspect/chainspect/internal/ingest"
	"github.com/chainspect/chainspect/internal/store"
	"github.com/chainspect/chainspect/internal/ws"
	"github.com/chainspect/chainspect/pkg/diag"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("chainspectd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Service.HTTPPort,
		"report_ttl", cfg.Service.ReportTTL,
		"auth_mode", cfg.Service.Auth.Mode,
		"runs", len(cfg.Runs),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Report store with background TTL eviction.
	st := store.New(cfg.Service.ReportTTL)
	go st.Run(ctx)

	// Alert engine, evaluated on every recomputed report.
	alertEngine := alerts.New(cfg.Alerts)

	// WebSocket hub pushes the full report snapshot to connected renderers.
	hub := ws.New(st, cfg.Service.BroadcastInterval)
	go hub.Run(ctx)

	// One monitor per configured run: an initial read, then recompute on
	// every change to the run directory.
	for _, run := range cfg.Runs {
		lags := cfg.Diagnostics.Lags
		if run.Lags > 0 {
			lags = run.Lags
		}
		mon := &monitor{
			reader: ingest.New(run),
			diag:   cfg.Diagnostics,
			lags:   lags,
			store:  st,
			alerts: alertEngine,
			hub:    hub,
		}
		go func(run config.RunConfig) {
			mon.refresh(ctx)
			if err := ingest.Watch(ctx, run.ID, run.Dir, func() { mon.refresh(ctx) }); err != nil && ctx.Err() == nil {
				slog.Error("run watcher stopped", "run", run.ID, "err", err)
			}
		}(run)
	}

	// Hot-reload alert rules and webhooks on config file changes. The
	// service and run sections need a restart to take effect.
	go func() {
		err := config.Watch(ctx, *configPath, func(next *config.Config) {
			alertEngine.Reconfigure(next.Alerts)
			slog.Info("alert rules reloaded",
				"rules", len(next.Alerts.Rules), "webhooks", len(next.Alerts.Webhooks))
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Combined HTTP server: JSON API, WebSocket stream and /metrics.
	mux := http.NewServeMux()
	mux.Handle("/api/", api.RequireAPIKey(cfg.Service.Auth, api.New(st, alertEngine)))
	mux.Handle("/ws/stream", hub)
	mux.Handle("/metrics", export.New(st))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Service.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Service.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("chainspectd shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}

// monitor recomputes one run's diagnostic report.
type monitor struct {
	reader ingest.Reader
	diag   config.DiagnosticsConfig
	lags   int
	store  *store.Store
	alerts *alerts.Engine
	hub    *ws.Hub
}

// refresh reads the run directory, prepares the diagnostic tables and
// autocorrelation records, and publishes the new report. A failed read or
// preparation leaves the previous report in place until it expires.
func (m *monitor) refresh(ctx context.Context) {
	res := m.reader.Read(ctx)
	if res.Err != nil {
		slog.Error("read run", "run", res.RunID, "err", res.Err)
		return
	}

	rhat, err := diag.PrepareWith(diag.Rhat, res.Rhat, res.Parameters, m.diag.RhatBP())
	if err != nil {
		slog.Error("prepare rhat", "run", res.RunID, "err", err)
		return
	}
	neff, err := diag.PrepareWith(diag.NeffRatio, res.NeffRatio, res.Parameters, m.diag.NeffBP())
	if err != nil {
		slog.Error("prepare neff ratio", "run", res.RunID, "err", err)
		return
	}
	if rhat.Dropped > 0 {
		slog.Warn("dropped missing rhat values", "run", res.RunID, "count", rhat.Dropped)
	}
	if neff.Dropped > 0 {
		slog.Warn("dropped missing neff ratio values", "run", res.RunID, "count", neff.Dropped)
	}

	acf, err := diag.PrepareAutocorrelation(res.Array, m.lags)
	if err != nil {
		slog.Error("prepare autocorrelation", "run", res.RunID, "err", err)
		return
	}

	rep := store.NewReport(res.RunID, res.ReadAt, rhat, neff, acf, m.lags)
	m.store.Put(rep)
	m.alerts.Evaluate(rep)
	m.hub.Notify()

	slog.Info("report updated",
		"run", rep.RunID,
		"state", rep.Summary.State,
		"rhat_max", rep.Summary.MaxRhat,
		"neff_ratio_min", rep.Summary.MinNeffRatio,
		"parameters", len(rep.Rhat.Records),
	)
}
