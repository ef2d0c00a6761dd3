package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chainspect/chainspect/pkg/diag"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultReportTTL         = 10 * time.Minute
	DefaultBroadcastInterval = 5 * time.Second
	DefaultLags              = diag.DefaultLags
)

// Config is the top-level configuration for chainspectd.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Runs        []RunConfig       `yaml:"runs"`
	Alerts      AlertsConfig      `yaml:"alerts"`
}

// ServiceConfig holds the HTTP/WebSocket surface settings.
type ServiceConfig struct {
	// HTTPPort is the port the JSON API, WebSocket hub and /metrics
	// exposition listen on.
	HTTPPort int `yaml:"http_port"`

	// ReportTTL is how long a run's diagnostic report stays live in the
	// store without being recomputed.
	ReportTTL time.Duration `yaml:"report_ttl"`

	// BroadcastInterval controls how often the WebSocket hub pushes the
	// current reports to connected renderers.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Auth configures API authentication for the JSON endpoints.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig specifies API authentication. Mode is "apikey" or "none".
type AuthConfig struct {
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key. Defaults to X-API-Key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "X-API-Key"
	}
	return a.Header
}

// DiagnosticsConfig overrides the classification defaults.
type DiagnosticsConfig struct {
	// RhatBreakpoints are the two ascending Rhat cut points.
	// Defaults to [1.05, 1.10].
	RhatBreakpoints []float64 `yaml:"rhat_breakpoints"`

	// NeffBreakpoints are the two ascending effective-sample-size ratio
	// cut points. Defaults to [0.10, 0.50].
	NeffBreakpoints []float64 `yaml:"neff_breakpoints"`

	// Lags is the max autocorrelation lag computed per (chain, parameter).
	// Defaults to 20.
	Lags int `yaml:"lags"`
}

// RhatBP returns the Rhat breakpoints as a diag.Breakpoints value.
func (d DiagnosticsConfig) RhatBP() diag.Breakpoints {
	return diag.Breakpoints{Low: d.RhatBreakpoints[0], High: d.RhatBreakpoints[1]}
}

// NeffBP returns the NeffRatio breakpoints as a diag.Breakpoints value.
func (d DiagnosticsConfig) NeffBP() diag.Breakpoints {
	return diag.Breakpoints{Low: d.NeffBreakpoints[0], High: d.NeffBreakpoints[1]}
}

// RunConfig describes one monitored sampler run.
type RunConfig struct {
	// ID is a unique, human-readable identifier for this run.
	ID string `yaml:"id"`

	// Dir is the directory holding the run output: one CSV of draws per
	// chain plus a summary.csv of per-parameter diagnostics.
	Dir string `yaml:"dir"`

	// Lags overrides diagnostics.lags for this run when positive.
	Lags int `yaml:"lags"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the
	// deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression over report summary fields:
	// "rhat_max > 1.1", "neff_ratio_min < 0.1", "dropped > 0",
	// "state == divergent".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	rhat := diag.Rhat.DefaultBreakpoints()
	neff := diag.NeffRatio.DefaultBreakpoints()
	return &Config{
		Service: ServiceConfig{
			HTTPPort:          DefaultHTTPPort,
			ReportTTL:         DefaultReportTTL,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		Diagnostics: DiagnosticsConfig{
			RhatBreakpoints: []float64{rhat.Low, rhat.High},
			NeffBreakpoints: []float64{neff.Low, neff.High},
			Lags:            DefaultLags,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Service.HTTPPort <= 0 || cfg.Service.HTTPPort > 65535 {
		return fmt.Errorf("service.http_port %d out of range", cfg.Service.HTTPPort)
	}
	if cfg.Service.ReportTTL <= 0 {
		return fmt.Errorf("service.report_ttl must be positive")
	}
	if cfg.Service.BroadcastInterval <= 0 {
		return fmt.Errorf("service.broadcast_interval must be positive")
	}
	switch cfg.Service.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("service.auth: unknown mode %q", cfg.Service.Auth.Mode)
	}

	if err := validateBreakpoints("diagnostics.rhat_breakpoints", cfg.Diagnostics.RhatBreakpoints); err != nil {
		return err
	}
	if err := validateBreakpoints("diagnostics.neff_breakpoints", cfg.Diagnostics.NeffBreakpoints); err != nil {
		return err
	}
	if cfg.Diagnostics.Lags <= 0 {
		return fmt.Errorf("diagnostics.lags must be positive")
	}

	seen := make(map[string]bool, len(cfg.Runs))
	for i, run := range cfg.Runs {
		if run.ID == "" {
			return fmt.Errorf("runs[%d]: id is required", i)
		}
		if seen[run.ID] {
			return fmt.Errorf("runs[%d]: duplicate id %q", i, run.ID)
		}
		seen[run.ID] = true
		if run.Dir == "" {
			return fmt.Errorf("runs[%d] %q: dir is required", i, run.ID)
		}
		if run.Lags < 0 {
			return fmt.Errorf("runs[%d] %q: lags must not be negative", i, run.ID)
		}
	}

	for i, rule := range cfg.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, rule.Name)
		}
	}

	return nil
}

func validateBreakpoints(field string, bp []float64) error {
	if len(bp) != 2 {
		return fmt.Errorf("%s: want exactly 2 values, got %d", field, len(bp))
	}
	if bp[0] >= bp[1] {
		return fmt.Errorf("%s: breakpoints must ascend, got [%g, %g]", field, bp[0], bp[1])
	}
	return nil
}
