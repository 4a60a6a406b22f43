package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func TestMissionCollector_CountersTrackRecorderCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewMissionCollector(reg)
	if err != nil {
		t.Fatalf("NewMissionCollector failed: %v", err)
	}

	c.MissionStarted()
	c.MissionStarted()
	c.MissionCompleted(core.OutcomeSuccess)
	c.MissionCompleted(core.OutcomeFailure)
	c.OutcomeResolved(true)
	c.OutcomeResolved(false)
	c.OutcomeResolved(false)
	c.DamageAssessed()

	started := gatherFamily(t, reg, "missions_started_total")
	if got := started.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("missions_started_total = %v, want 2", got)
	}

	completed := gatherFamily(t, reg, "missions_completed_total")
	if len(completed.GetMetric()) != 2 {
		t.Fatalf("expected success and failure labels, got %d series", len(completed.GetMetric()))
	}

	resolved := gatherFamily(t, reg, "outcome_resolutions_total")
	byVerdict := map[string]float64{}
	for _, m := range resolved.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "verdict" {
				byVerdict[lp.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if byVerdict["success"] != 1 || byVerdict["failure"] != 2 {
		t.Fatalf("verdict counts = %v, want success=1 failure=2", byVerdict)
	}
}

func TestMissionCollector_GaugesAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewMissionCollector(reg)
	if err != nil {
		t.Fatalf("NewMissionCollector failed: %v", err)
	}

	c.SetCatalogCounts(5, 3)
	c.ClientConnected()
	c.ClientConnected()
	c.ClientDisconnected()
	c.ObserveTick(0.002)
	c.ObserveTick(0.004)

	if got := gatherFamily(t, reg, "catalog_asteroids").GetMetric()[0].GetGauge().GetValue(); got != 5 {
		t.Fatalf("catalog_asteroids = %v, want 5", got)
	}
	if got := gatherFamily(t, reg, "stream_clients").GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Fatalf("stream_clients = %v, want 1", got)
	}

	hist := gatherFamily(t, reg, "simulation_tick_duration_seconds")
	if got := hist.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Fatalf("tick histogram sample count = %v, want 2", got)
	}
}

func TestNewMissionCollector_ToleratesReRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMissionCollector(reg)
	if err != nil {
		t.Fatalf("first construction failed: %v", err)
	}

	second, err := NewMissionCollector(reg)
	if err != nil {
		t.Fatalf("re-registration must reuse existing collectors: %v", err)
	}

	// Both handles drive the same underlying series.
	first.MissionStarted()
	second.MissionStarted()
	started := gatherFamily(t, reg, "missions_started_total")
	if got := started.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func TestMissionCollector_HandlerServesScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewMissionCollector(reg)
	if err != nil {
		t.Fatalf("NewMissionCollector failed: %v", err)
	}
	c.MissionStarted()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missions_started_total 1") {
		t.Fatalf("scrape body missing counter:\n%s", rec.Body.String())
	}
}
