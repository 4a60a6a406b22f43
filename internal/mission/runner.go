package mission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/observability"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/stream"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
	"github.com/signalsfoundry/asteroid-defense-simulator/timectrl"
)

// ErrMissionActive is returned by Launch while a run is still in flight.
var ErrMissionActive = errors.New("a mission is already active")

// ErrNoMission is returned by Current and Abort when nothing is running.
var ErrNoMission = errors.New("no active mission")

// Runner hosts one mission run at a time: it owns the tick loop, bridges the
// orchestrator's callbacks onto the websocket hub and the audio engine, and
// feeds the tick-duration histogram. The orchestrator itself is only touched
// from the driver goroutine; API reads go through state cached under the
// runner's mutex on each tick.
type Runner struct {
	mu         sync.Mutex
	active     *run
	lastStatus Status
	haveSnap   bool

	cfg       core.RunConfig
	tick      time.Duration
	log       logging.Logger
	hub       *stream.Hub
	audio     core.EffectListener
	collector *observability.MissionCollector
}

type run struct {
	orch   *core.MissionOrchestrator
	driver *timectrl.TickDriver

	asteroid model.Asteroid
	strategy model.DefenseStrategy

	asteroidOrbit core.PlacementModel
	parkingOrbit  core.PlacementModel

	done   bool
	result Result
}

func (ru *run) scene(at time.Time) Scene {
	return Scene{
		AsteroidOrbit: ru.asteroidOrbit.Position(at),
		Interceptor:   ru.parkingOrbit.Position(at),
	}
}

// Scene carries presentation positions for render clients: the asteroid on
// its heliocentric ellipse and the interceptor on its parking orbit. The
// mission machines never consult these.
type Scene struct {
	AsteroidOrbit core.Vec3 `json:"asteroid_orbit"`
	Interceptor   core.Vec3 `json:"interceptor"`
}

// Status is the engine snapshot of the active run plus the scene placements.
type Status struct {
	core.Snapshot
	Scene Scene `json:"scene"`
}

// Result is the terminal record of a finished run.
type Result struct {
	Success           bool                    `json:"success"`
	DeflectionPercent float64                 `json:"deflection_percent"`
	Damage            *model.DamageAssessment `json:"damage,omitempty"`
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the structured logger.
func WithRunnerLogger(log logging.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithHub attaches the websocket hub snapshots and events are pushed to.
func WithHub(hub *stream.Hub) RunnerOption {
	return func(r *Runner) { r.hub = hub }
}

// WithAudio attaches the effect listener, normally the audio engine.
func WithAudio(l core.EffectListener) RunnerOption {
	return func(r *Runner) { r.audio = l }
}

// WithCollector attaches the Prometheus collector; it doubles as the
// orchestrator's metrics recorder.
func WithCollector(c *observability.MissionCollector) RunnerOption {
	return func(r *Runner) { r.collector = c }
}

// NewRunner builds a runner that ticks missions at the given interval.
func NewRunner(cfg core.RunConfig, tick time.Duration, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:  cfg,
		tick: tick,
		log:  logging.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Launch starts a run for the given asteroid and strategy. Only one run may
// be in flight; a second launch fails with ErrMissionActive until the first
// completes or is aborted.
func (r *Runner) Launch(ctx context.Context, asteroid model.Asteroid, strategy model.DefenseStrategy) error {
	if err := asteroid.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && !r.active.done {
		return ErrMissionActive
	}

	ctx, log := logging.WithRunLogger(ctx, r.log)

	now := time.Now()
	active := &run{
		asteroid:      asteroid,
		strategy:      strategy,
		asteroidOrbit: core.NewKeplerianPlacement(&asteroid, now),
		parkingOrbit:  core.NewDefaultParkingOrbit(),
	}
	observer := core.ObserverFuncs{
		OnComplete: func(success bool, deflection float64) {
			r.onComplete(ctx, active, success, deflection)
		},
		OnShowImpact: func() {
			r.publish("impact_started", map[string]any{"asteroid_id": asteroid.ID})
		},
		OnImpactComplete: func() {
			r.publish("impact_finished", map[string]any{"asteroid_id": asteroid.ID})
		},
		OnDamageReady: func(d *model.DamageAssessment) {
			r.mu.Lock()
			active.result.Damage = d
			r.mu.Unlock()
			r.publish("damage_report", d)
		},
	}

	opts := []core.OrchestratorOption{
		core.WithLogger(log),
		core.WithObserver(observer),
		core.WithEffects(core.EffectFunc(r.onEffect)),
	}
	if r.collector != nil {
		opts = append(opts, core.WithRecorder(r.collector))
	}
	orch := core.NewMissionOrchestrator(r.cfg, &active.asteroid, &active.strategy, opts...)
	active.orch = orch

	driver := timectrl.NewTickDriver(r.tick, timectrl.RealTime)
	driver.AddListener(func(dt float64) {
		started := time.Now()
		orch.Tick(dt)
		if r.collector != nil {
			r.collector.ObserveTick(time.Since(started).Seconds())
		}

		status := Status{Snapshot: orch.State(), Scene: active.scene(time.Now())}
		r.mu.Lock()
		r.lastStatus = status
		r.haveSnap = true
		done := orch.Done()
		active.done = done
		r.mu.Unlock()

		r.publish("snapshot", status)
		if done {
			driver.Stop()
		}
	})
	active.driver = driver

	r.active = active
	r.haveSnap = false
	driver.Start(0)

	r.publish("mission_launched", map[string]any{
		"asteroid_id":    asteroid.ID,
		"strategy_code":  strategy.Code,
		"display_chance": core.EstimateDisplayChance(&strategy, &asteroid),
		"scene":          active.scene(now),
	})
	log.Info(ctx, "mission launched",
		logging.String("asteroid", asteroid.ID),
		logging.String("strategy", strategy.Code),
	)
	return nil
}

// Current returns the latest status of the active run.
func (r *Runner) Current() (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil || !r.haveSnap {
		return Status{}, ErrNoMission
	}
	return r.lastStatus, nil
}

// LastResult returns the terminal record of the most recent completed run.
func (r *Runner) LastResult() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil || !r.active.done {
		return Result{}, false
	}
	return r.active.result, true
}

// Abort cancels the active run without a completion callback.
func (r *Runner) Abort() error {
	r.mu.Lock()
	active := r.active
	if active == nil || active.done {
		r.mu.Unlock()
		return ErrNoMission
	}
	r.active = nil
	r.haveSnap = false
	r.mu.Unlock()

	// Stop the tick loop first so the orchestrator is quiescent.
	active.driver.Stop()
	active.driver.Wait()
	active.orch.Stop()
	r.publish("mission_aborted", nil)
	return nil
}

// Shutdown stops any active run and waits for its tick loop to exit.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	active := r.active
	r.active = nil
	r.mu.Unlock()

	if active == nil {
		return
	}
	// Stop the tick loop first so the orchestrator is quiescent.
	active.driver.Stop()
	active.driver.Wait()
	active.orch.Stop()
}

func (r *Runner) onComplete(ctx context.Context, active *run, success bool, deflection float64) {
	r.mu.Lock()
	active.result.Success = success
	active.result.DeflectionPercent = deflection
	result := active.result
	r.mu.Unlock()

	r.publish("mission_complete", result)
	r.log.Info(ctx, "mission run finished",
		logging.Any("success", success),
		logging.Any("deflection_percent", deflection),
	)
}

// onEffect fans effect triggers out to the audio engine and the stream.
func (r *Runner) onEffect(e core.Effect) {
	if r.audio != nil {
		r.audio.OnEffect(e)
	}
	r.publish("effect", string(e))
}

func (r *Runner) publish(msgType string, payload any) {
	if r.hub == nil {
		return
	}
	r.hub.Broadcast(stream.Message{Type: msgType, Payload: payload, Sender: "simulation"})
}
