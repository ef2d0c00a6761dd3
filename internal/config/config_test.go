package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes body to a temp file and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
runs:
  - id: eight-schools
    dir: testdata/eight-schools
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.HTTPPort != DefaultHTTPPort {
		t.Errorf("HTTPPort = %d, want %d", cfg.Service.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Service.ReportTTL != DefaultReportTTL {
		t.Errorf("ReportTTL = %v, want %v", cfg.Service.ReportTTL, DefaultReportTTL)
	}
	if cfg.Diagnostics.Lags != DefaultLags {
		t.Errorf("Lags = %d, want %d", cfg.Diagnostics.Lags, DefaultLags)
	}
	if bp := cfg.Diagnostics.RhatBP(); bp.Low != 1.05 || bp.High != 1.10 {
		t.Errorf("RhatBP = %+v, want {1.05 1.1}", bp)
	}
	if bp := cfg.Diagnostics.NeffBP(); bp.Low != 0.10 || bp.High != 0.50 {
		t.Errorf("NeffBP = %+v, want {0.1 0.5}", bp)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
service:
  http_port: 9000
  report_ttl: 30m
  broadcast_interval: 2s
  auth:
    mode: apikey
    key_env: CHAINSPECT_API_KEY
diagnostics:
  rhat_breakpoints: [1.01, 1.02]
  neff_breakpoints: [0.25, 0.75]
  lags: 40
runs:
  - id: run-a
    dir: /data/run-a
  - id: run-b
    dir: /data/run-b
    lags: 10
alerts:
  rules:
    - name: rhat-high
      condition: rhat_max > 1.1
      severity: critical
      cooldown: 5m
  webhooks:
    - type: slack
      url_env: SLACK_WEBHOOK_URL
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.HTTPPort != 9000 {
		t.Errorf("HTTPPort = %d, want 9000", cfg.Service.HTTPPort)
	}
	if cfg.Service.ReportTTL != 30*time.Minute {
		t.Errorf("ReportTTL = %v, want 30m", cfg.Service.ReportTTL)
	}
	if cfg.Service.Auth.Mode != "apikey" {
		t.Errorf("Auth.Mode = %q, want apikey", cfg.Service.Auth.Mode)
	}
	if got := cfg.Service.Auth.EffectiveHeader(); got != "X-API-Key" {
		t.Errorf("EffectiveHeader = %q, want X-API-Key", got)
	}
	if bp := cfg.Diagnostics.RhatBP(); bp.Low != 1.01 || bp.High != 1.02 {
		t.Errorf("RhatBP = %+v", bp)
	}
	if len(cfg.Runs) != 2 || cfg.Runs[1].Lags != 10 {
		t.Errorf("Runs = %+v", cfg.Runs)
	}
	if len(cfg.Alerts.Rules) != 1 || cfg.Alerts.Rules[0].Cooldown != 5*time.Minute {
		t.Errorf("Alerts.Rules = %+v", cfg.Alerts.Rules)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing run id",
			body:    "runs:\n  - dir: /data/x\n",
			wantErr: "id is required",
		},
		{
			name:    "missing run dir",
			body:    "runs:\n  - id: x\n",
			wantErr: "dir is required",
		},
		{
			name:    "duplicate run id",
			body:    "runs:\n  - id: x\n    dir: /a\n  - id: x\n    dir: /b\n",
			wantErr: "duplicate id",
		},
		{
			name:    "descending rhat breakpoints",
			body:    "diagnostics:\n  rhat_breakpoints: [1.2, 1.1]\n",
			wantErr: "must ascend",
		},
		{
			name:    "wrong breakpoint count",
			body:    "diagnostics:\n  neff_breakpoints: [0.1, 0.5, 0.9]\n",
			wantErr: "exactly 2 values",
		},
		{
			name:    "non-positive lags",
			body:    "diagnostics:\n  lags: 0\n",
			wantErr: "lags must be positive",
		},
		{
			name:    "unknown auth mode",
			body:    "service:\n  auth:\n    mode: oauth\n",
			wantErr: "unknown mode",
		},
		{
			name:    "rule without condition",
			body:    "alerts:\n  rules:\n    - name: r\n",
			wantErr: "condition is required",
		},
		{
			name:    "broken yaml",
			body:    "runs: [",
			wantErr: "parse yaml",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded on missing file")
	}
}
