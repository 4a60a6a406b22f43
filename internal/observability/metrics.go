package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
)

// MissionCollector bundles Prometheus metrics for the simulation surface and
// implements core.MetricsRecorder so the orchestrator can drive counters
// directly from its tick path.
type MissionCollector struct {
	gatherer prometheus.Gatherer

	MissionsStarted   prometheus.Counter
	MissionsCompleted *prometheus.CounterVec
	OutcomesResolved  *prometheus.CounterVec
	DamageAssessments prometheus.Counter
	TickDuration      prometheus.Histogram

	CatalogAsteroids  prometheus.Gauge
	CatalogStrategies prometheus.Gauge
	StreamClients     prometheus.Gauge
}

// NewMissionCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewMissionCollector(reg prometheus.Registerer) (*MissionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	started, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "missions_started_total",
		Help: "Total number of mission runs started.",
	}), "missions_started_total")
	if err != nil {
		return nil, err
	}

	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "missions_completed_total",
		Help: "Total number of completed mission runs, labeled by outcome.",
	}, []string{"outcome"})
	completed, err = registerCounterVec(reg, completed, "missions_completed_total")
	if err != nil {
		return nil, err
	}

	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outcome_resolutions_total",
		Help: "Total number of outcome resolutions, labeled by verdict. At most one per run.",
	}, []string{"verdict"})
	resolved, err = registerCounterVec(reg, resolved, "outcome_resolutions_total")
	if err != nil {
		return nil, err
	}

	damage, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "damage_assessments_total",
		Help: "Total number of damage assessments computed.",
	}), "damage_assessments_total")
	if err != nil {
		return nil, err
	}

	tick, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_tick_duration_seconds",
		Help:    "Wall time spent advancing the simulation per tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}), "simulation_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	asteroids, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_asteroids",
		Help: "Current number of asteroids in the catalog.",
	}), "catalog_asteroids")
	if err != nil {
		return nil, err
	}
	strategies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_strategies",
		Help: "Current number of defense strategies in the catalog.",
	}), "catalog_strategies")
	if err != nil {
		return nil, err
	}
	clients, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stream_clients",
		Help: "Currently connected snapshot stream clients.",
	}), "stream_clients")
	if err != nil {
		return nil, err
	}

	return &MissionCollector{
		gatherer:          gatherer,
		MissionsStarted:   started,
		MissionsCompleted: completed,
		OutcomesResolved:  resolved,
		DamageAssessments: damage,
		TickDuration:      tick,
		CatalogAsteroids:  asteroids,
		CatalogStrategies: strategies,
		StreamClients:     clients,
	}, nil
}

// MissionStarted satisfies core.MetricsRecorder.
func (c *MissionCollector) MissionStarted() {
	if c == nil || c.MissionsStarted == nil {
		return
	}
	c.MissionsStarted.Inc()
}

// MissionCompleted satisfies core.MetricsRecorder.
func (c *MissionCollector) MissionCompleted(outcome core.Outcome) {
	if c == nil || c.MissionsCompleted == nil {
		return
	}
	c.MissionsCompleted.WithLabelValues(string(outcome)).Inc()
}

// OutcomeResolved satisfies core.MetricsRecorder.
func (c *MissionCollector) OutcomeResolved(success bool) {
	if c == nil || c.OutcomesResolved == nil {
		return
	}
	verdict := "failure"
	if success {
		verdict = "success"
	}
	c.OutcomesResolved.WithLabelValues(verdict).Inc()
}

// DamageAssessed satisfies core.MetricsRecorder.
func (c *MissionCollector) DamageAssessed() {
	if c == nil || c.DamageAssessments == nil {
		return
	}
	c.DamageAssessments.Inc()
}

// ObserveTick records how long one simulation tick took to advance.
func (c *MissionCollector) ObserveTick(seconds float64) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(seconds)
}

// SetCatalogCounts drives the catalog gauges; wired to kb.Catalog events.
func (c *MissionCollector) SetCatalogCounts(asteroids, strategies int) {
	if c == nil {
		return
	}
	if c.CatalogAsteroids != nil {
		c.CatalogAsteroids.Set(float64(asteroids))
	}
	if c.CatalogStrategies != nil {
		c.CatalogStrategies.Set(float64(strategies))
	}
}

// ClientConnected and ClientDisconnected drive the stream-clients gauge.
func (c *MissionCollector) ClientConnected() {
	if c != nil && c.StreamClients != nil {
		c.StreamClients.Inc()
	}
}

func (c *MissionCollector) ClientDisconnected() {
	if c != nil && c.StreamClients != nil {
		c.StreamClients.Dec()
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *MissionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
