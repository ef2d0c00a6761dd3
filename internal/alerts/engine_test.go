package alerts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chainspect/chainspect/internal/config"
	"github.com/chainspect/chainspect/internal/store"
	"github.com/chainspect/chainspect/pkg/diag"
)

// report builds a store.Report whose summary reflects the given vectors.
func report(t *testing.T, runID string, rhat, neff []float64) *store.Report {
	t.Helper()
	rt, err := diag.PrepareRhat(rhat, nil)
	if err != nil {
		t.Fatalf("PrepareRhat: %v", err)
	}
	nt, err := diag.PrepareNeffRatio(neff, nil)
	if err != nil {
		t.Fatalf("PrepareNeffRatio: %v", err)
	}
	return store.NewReport(runID, time.Now(), rt, nt, nil, diag.DefaultLags)
}

func TestEvalCondition(t *testing.T) {
	rep := report(t, "r", []float64{1.02, 1.15}, []float64{0.05, 0.7})

	tests := []struct {
		cond      string
		wantFires bool
		wantValue float64
	}{
		{"rhat_max > 1.1", true, 1.15},
		{"rhat_max > 1.2", false, 1.15},
		{"rhat_max >= 1.15", true, 1.15},
		{"neff_ratio_min < 0.1", true, 0.05},
		{"neff_ratio_min < 0.01", false, 0.05},
		{"dropped > 0", false, 0},
		{"state == divergent", true, 0},
		{"state == converged", false, 0},
		// Unparseable or unknown expressions never fire.
		{"rhat_max >", false, 0},
		{"nonsense > 1", false, 0},
		{"rhat_max > abc", false, 0},
		{"state > divergent", false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			fires, value := evalCondition(tc.cond, rep)
			if fires != tc.wantFires {
				t.Errorf("fires = %v, want %v", fires, tc.wantFires)
			}
			if value != tc.wantValue {
				t.Errorf("value = %v, want %v", value, tc.wantValue)
			}
		})
	}
}

func TestEngine_FireAndResolve(t *testing.T) {
	eng := New(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "rhat-high", Condition: "rhat_max > 1.1", Severity: "critical"},
		},
	})

	// Divergent report fires the rule.
	eng.Evaluate(report(t, "run-a", []float64{1.2}, []float64{0.8}))

	active := eng.Active()
	if len(active) != 1 {
		t.Fatalf("Active returned %d alerts, want 1", len(active))
	}
	a := active[0]
	if a.RuleName != "rhat-high" || a.RunID != "run-a" || a.State != "firing" {
		t.Errorf("alert = %+v", a)
	}
	if a.Value != 1.2 {
		t.Errorf("Value = %v, want 1.2", a.Value)
	}
	if a.Severity != "critical" {
		t.Errorf("Severity = %q, want critical", a.Severity)
	}

	// A recovered report resolves it; the resolved alert stays visible.
	eng.Evaluate(report(t, "run-a", []float64{1.0}, []float64{0.8}))

	active = eng.Active()
	if len(active) != 1 {
		t.Fatalf("Active returned %d alerts after resolve, want 1", len(active))
	}
	if active[0].State != "resolved" || active[0].ResolvedAt == nil {
		t.Errorf("alert not resolved: %+v", active[0])
	}
}

func TestEngine_Cooldown(t *testing.T) {
	eng := New(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "rhat-high", Condition: "rhat_max > 1.1", Cooldown: time.Hour},
		},
	})

	eng.Evaluate(report(t, "run-a", []float64{1.2}, []float64{0.8}))
	eng.Evaluate(report(t, "run-a", []float64{1.3}, []float64{0.8}))

	if got := len(eng.Active()); got != 1 {
		t.Errorf("Active returned %d alerts, want 1 (cooldown suppresses the re-fire)", got)
	}
}

func TestEngine_PerRunKeys(t *testing.T) {
	eng := New(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "rhat-high", Condition: "rhat_max > 1.1"},
		},
	})

	eng.Evaluate(report(t, "run-a", []float64{1.2}, []float64{0.8}))
	eng.Evaluate(report(t, "run-b", []float64{1.3}, []float64{0.8}))

	if got := len(eng.Active()); got != 2 {
		t.Errorf("Active returned %d alerts, want one per run", got)
	}
}

func TestEngine_WebhookDelivery(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Alert *Alert `json:"alert"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, payload.Alert.State)
		mu.Unlock()
	}))
	defer srv.Close()

	t.Setenv("TEST_WEBHOOK_URL", srv.URL)

	eng := New(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "rhat-high", Condition: "rhat_max > 1.1"},
		},
		Webhooks: []config.WebhookConfig{
			{Type: "http", URLEnv: "TEST_WEBHOOK_URL"},
		},
	})

	eng.Evaluate(report(t, "run-a", []float64{1.2}, []float64{0.8}))

	// Delivery is asynchronous; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(bodies)
		mu.Unlock()
		if n >= 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 || bodies[0] != "firing" {
		t.Errorf("webhook bodies = %v, want one firing delivery", bodies)
	}
}

func TestEngine_NoRulesIsNoop(t *testing.T) {
	eng := New(config.AlertsConfig{})
	eng.Evaluate(report(t, "run-a", []float64{2.5}, []float64{0.01}))
	if got := len(eng.Active()); got != 0 {
		t.Errorf("Active returned %d alerts with no rules", got)
	}
}

func TestEngine_ActiveOrderIsStable(t *testing.T) {
	eng := New(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "rhat-high", Condition: "rhat_max > 1.1"},
			{Name: "neff-low", Condition: "neff_ratio_min < 0.1"},
		},
	})

	// One report trips both rules on two runs: four concurrent alerts.
	eng.Evaluate(report(t, "run-b", []float64{2.5}, []float64{0.01}))
	eng.Evaluate(report(t, "run-a", []float64{2.5}, []float64{0.01}))

	first := eng.Active()
	if len(first) != 4 {
		t.Fatalf("Active returned %d alerts, want 4", len(first))
	}
	for i := 1; i < len(first); i++ {
		a, b := first[i-1], first[i]
		if b.FiredAt.Before(a.FiredAt) {
			t.Errorf("alerts[%d] fired before alerts[%d]", i, i-1)
		}
		if a.FiredAt.Equal(b.FiredAt) && a.RuleName > b.RuleName {
			t.Errorf("tie at %d not ordered by rule: %q before %q", i, a.RuleName, b.RuleName)
		}
	}

	// Repeated calls return the same order despite map-backed state.
	for call := 0; call < 5; call++ {
		again := eng.Active()
		for i := range first {
			if again[i].RuleName != first[i].RuleName || again[i].RunID != first[i].RunID {
				t.Fatalf("call %d: alerts[%d] = %s:%s, want %s:%s",
					call, i, again[i].RuleName, again[i].RunID, first[i].RuleName, first[i].RunID)
			}
		}
	}
}

func TestEngine_Reconfigure(t *testing.T) {
	eng := New(config.AlertsConfig{})
	eng.Reconfigure(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "neff-low", Condition: "neff_ratio_min < 0.1"},
		},
	})

	eng.Evaluate(report(t, "run-a", []float64{1.0}, []float64{0.05}))
	if got := len(eng.Active()); got != 1 {
		t.Errorf("Active returned %d alerts after reconfigure, want 1", got)
	}
	if !strings.Contains(eng.Active()[0].Message, "neff_ratio_min") {
		t.Errorf("Message = %q does not name the condition", eng.Active()[0].Message)
	}
}
