package core

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

const tracerName = "github.com/signalsfoundry/asteroid-defense-simulator/core"

// RunConfig bundles the configuration of one mission run.
type RunConfig struct {
	Mission MissionConfig `yaml:"mission"`
	Impact  ImpactConfig  `yaml:"impact"`
}

// DefaultRunConfig returns the nominal timings for both machines.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Mission: DefaultMissionConfig(),
		Impact:  DefaultImpactConfig(),
	}
}

// MissionOrchestrator sequences one run: the mission machine, then on a
// failed intercept the impact cinematic, then the final host callback.
// Like the controllers it owns, it is single-threaded: all mutation happens
// inside Tick on the host's ticking goroutine.
type MissionOrchestrator struct {
	cfg      RunConfig
	asteroid *model.Asteroid
	strategy *model.DefenseStrategy

	rng      RNG
	log      logging.Logger
	effects  EffectListener
	observer MissionObserver
	recorder MetricsRecorder

	mission *MissionPhaseController
	impact  *ImpactPhaseController

	runCtx  context.Context
	span    trace.Span
	started bool

	missionSuccess bool
	completed      bool
	stopped        bool
}

// OrchestratorOption customizes a MissionOrchestrator.
type OrchestratorOption func(*MissionOrchestrator)

// WithLogger attaches a structured logger, shared with both controllers.
func WithLogger(log logging.Logger) OrchestratorOption {
	return func(o *MissionOrchestrator) { o.log = log }
}

// WithEffects attaches the effect-trigger listener, shared with both
// controllers.
func WithEffects(l EffectListener) OrchestratorOption {
	return func(o *MissionOrchestrator) { o.effects = l }
}

// WithObserver attaches the host callback surface.
func WithObserver(obs MissionObserver) OrchestratorOption {
	return func(o *MissionOrchestrator) { o.observer = obs }
}

// WithRNG injects the random source used for outcome resolution and the
// narrative deflection roll.
func WithRNG(rng RNG) OrchestratorOption {
	return func(o *MissionOrchestrator) { o.rng = rng }
}

// WithRecorder attaches a metrics recorder, shared with both controllers.
func WithRecorder(r MetricsRecorder) OrchestratorOption {
	return func(o *MissionOrchestrator) { o.recorder = r }
}

// NewMissionOrchestrator assembles a run for one asteroid/strategy pair.
func NewMissionOrchestrator(cfg RunConfig, asteroid *model.Asteroid, strategy *model.DefenseStrategy, opts ...OrchestratorOption) *MissionOrchestrator {
	o := &MissionOrchestrator{
		cfg:      cfg,
		asteroid: asteroid,
		strategy: strategy,
		log:      logging.Noop(),
		observer: ObserverFuncs{},
		recorder: noopRecorder{},
		runCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}

	resolver := NewOutcomeResolver(o.rng)
	if o.rng == nil {
		// Share the resolver's time-seeded source for the deflection roll.
		o.rng = resolver.rng
	}

	o.mission = NewMissionPhaseController(cfg.Mission, asteroid, strategy, resolver,
		WithMissionLogger(o.log),
		WithMissionEffects(o.effects),
		WithMissionRecorder(o.recorder),
		WithMissionFinished(o.missionFinished),
	)
	return o
}

// Tick advances the active machine by dt seconds, starting the run on the
// first tick.
func (o *MissionOrchestrator) Tick(dt float64) {
	if o.stopped || o.completed {
		return
	}
	if !o.started {
		o.start()
	}
	if o.impact != nil {
		o.impact.Tick(dt)
		return
	}
	o.mission.Tick(dt)
}

func (o *MissionOrchestrator) start() {
	o.started = true
	o.recorder.MissionStarted()
	o.emit(EffectAmbienceStart)

	o.runCtx, o.span = otel.Tracer(tracerName).Start(context.Background(), "mission_run",
		trace.WithAttributes(
			attribute.String("asteroid.id", o.asteroid.ID),
			attribute.String("asteroid.name", o.asteroid.Name),
			attribute.Float64("asteroid.diameter_m", o.asteroid.DiameterM),
			attribute.String("strategy.code", o.strategy.Code),
			attribute.Float64("display_chance", EstimateDisplayChance(o.strategy, o.asteroid)),
		),
	)

	o.log.Info(o.runCtx, "mission started",
		logging.String("asteroid", o.asteroid.ID),
		logging.String("strategy", o.strategy.Code),
		logging.String("size_class", string(o.asteroid.Size())),
	)
}

// missionFinished is the mission machine's completion hook: success exits
// the run, failure hands off to the impact cinematic.
func (o *MissionOrchestrator) missionFinished(success bool) {
	if o.stopped {
		return
	}
	o.missionSuccess = success
	if success {
		o.complete(OutcomeSuccess)
		return
	}

	o.observer.ShowImpact()
	if o.span != nil {
		o.span.AddEvent("impact_cinematic_started")
	}
	o.impact = NewImpactPhaseController(o.cfg.Impact, o.asteroid,
		WithImpactLogger(o.log),
		WithImpactEffects(o.effects),
		WithImpactRecorder(o.recorder),
		WithDamageReady(o.observer.DamageReady),
		WithImpactFinished(o.impactFinished),
	)
}

func (o *MissionOrchestrator) impactFinished() {
	if o.stopped {
		return
	}
	o.observer.ImpactComplete()
	o.complete(OutcomeFailure)
}

// complete reports the final result exactly once.
func (o *MissionOrchestrator) complete(outcome Outcome) {
	if o.completed {
		return
	}
	o.completed = true

	// Narrative flavor only: how far off course the attempt nudged the rock.
	var deflection float64
	if o.missionSuccess {
		deflection = 50 + o.rng.Float64()*50
	} else {
		deflection = o.rng.Float64() * 30
	}

	o.emit(EffectAmbienceStop)
	o.recorder.MissionCompleted(outcome)
	o.log.Info(o.runCtx, "mission complete",
		logging.String("outcome", string(outcome)),
		logging.Any("deflection_percent", deflection),
	)
	if o.span != nil {
		o.span.SetAttributes(attribute.String("outcome", string(outcome)))
		o.span.End()
		o.span = nil
	}

	o.observer.MissionComplete(outcome == OutcomeSuccess, deflection)
}

func (o *MissionOrchestrator) emit(e Effect) {
	if o.stopped || o.effects == nil {
		return
	}
	o.effects.OnEffect(e)
}

// State returns the active machine's snapshot.
func (o *MissionOrchestrator) State() Snapshot {
	if o.impact != nil {
		return o.impact.State()
	}
	return o.mission.State()
}

// Done reports whether the run reached its final callback.
func (o *MissionOrchestrator) Done() bool { return o.completed }

// Stop cancels the run. Pending phase timers die with the controllers and
// no event or callback fires afterwards; state is discarded wholesale.
func (o *MissionOrchestrator) Stop() {
	if o.stopped {
		return
	}
	o.stopped = true
	o.mission.Stop()
	if o.impact != nil {
		o.impact.Stop()
	}
	if o.span != nil {
		o.span.SetAttributes(attribute.String("outcome", "cancelled"))
		o.span.End()
		o.span = nil
	}
}
