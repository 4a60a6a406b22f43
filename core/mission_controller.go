package core

import (
	"context"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// destroyedDiameterM is the largest non-nuclear target that shatters outright
// on a successful intercept; bigger targets get deflected instead.
const destroyedDiameterM = 200.0

// MissionConfig carries the tunable timings and geometry of the intercept
// machine. All durations are seconds; distances are scene units.
type MissionConfig struct {
	ApproachDuration float64 `yaml:"approach_duration"`
	LaunchDuration   float64 `yaml:"launch_duration"`
	OutcomeDuration  float64 `yaml:"outcome_duration"`

	// TimeBudget backs the HUD countdown: time remaining is the budget minus
	// cumulative elapsed time across phases.
	TimeBudget float64 `yaml:"time_budget"`

	// InterceptThreshold is the spacecraft–asteroid distance that counts as
	// an intercept.
	InterceptThreshold float64 `yaml:"intercept_threshold"`

	AsteroidStartDistance    float64 `yaml:"asteroid_start_distance"`
	AsteroidFloorDistance    float64 `yaml:"asteroid_floor_distance"`
	AsteroidApproachDuration float64 `yaml:"asteroid_approach_duration"`

	// InterceptSpeed is the seek speed for direct-intercept strategies;
	// StationKeepSpeed applies to station-keeping strategies.
	InterceptSpeed   float64 `yaml:"intercept_speed"`
	StationKeepSpeed float64 `yaml:"station_keep_speed"`

	// ApproachDirection is the fixed unit vector from Earth toward the
	// asteroid's spawn point.
	ApproachDirection Vec3 `yaml:"approach_direction"`
}

// DefaultMissionConfig returns the nominal mission timings.
func DefaultMissionConfig() MissionConfig {
	return MissionConfig{
		ApproachDuration:         4,
		LaunchDuration:           3,
		OutcomeDuration:          3,
		TimeBudget:               60,
		InterceptThreshold:       2,
		AsteroidStartDistance:    120,
		AsteroidFloorDistance:    8,
		AsteroidApproachDuration: 45,
		InterceptSpeed:           15,
		StationKeepSpeed:         8,
		ApproachDirection:        Vec3{X: 1, Y: 0.4, Z: 0.25}.Normalize(),
	}
}

// MissionPhaseController drives the intercept state machine
// approach → launch → intercept → outcome. All state is mutated only inside
// Tick, on the host's ticking goroutine.
type MissionPhaseController struct {
	cfg      MissionConfig
	asteroid *model.Asteroid
	strategy *model.DefenseStrategy
	resolver *OutcomeResolver

	log      logging.Logger
	effects  EffectListener
	recorder MetricsRecorder

	phase          MissionPhase
	elapsedInPhase float64
	totalElapsed   float64

	asteroidPos   Vec3
	spacecraftPos Vec3
	launchPad     Vec3

	// outcomeDetermined is the outcome latch: the intercept-distance check
	// runs every tick and can hold true across many consecutive ticks, but
	// resolution must fire at most once per run.
	outcomeDetermined bool
	outcome           Outcome
	fate              AsteroidFate
	laserActive       bool

	finished   bool
	stopped    bool
	onFinished func(success bool)
}

// MissionOption customizes a MissionPhaseController.
type MissionOption func(*MissionPhaseController)

// WithMissionLogger attaches a structured logger.
func WithMissionLogger(log logging.Logger) MissionOption {
	return func(c *MissionPhaseController) { c.log = log }
}

// WithMissionEffects attaches an effect-trigger listener.
func WithMissionEffects(l EffectListener) MissionOption {
	return func(c *MissionPhaseController) { c.effects = l }
}

// WithMissionRecorder attaches a metrics recorder.
func WithMissionRecorder(r MetricsRecorder) MissionOption {
	return func(c *MissionPhaseController) { c.recorder = r }
}

// WithMissionFinished registers the completion callback, fired once when the
// outcome display phase ends.
func WithMissionFinished(fn func(success bool)) MissionOption {
	return func(c *MissionPhaseController) { c.onFinished = fn }
}

// NewMissionPhaseController constructs the controller in the approach phase,
// with the asteroid at its start distance and the spacecraft on the pad.
func NewMissionPhaseController(cfg MissionConfig, asteroid *model.Asteroid, strategy *model.DefenseStrategy, resolver *OutcomeResolver, opts ...MissionOption) *MissionPhaseController {
	if resolver == nil {
		resolver = NewOutcomeResolver(nil)
	}
	dir := cfg.ApproachDirection.Normalize()
	if dir == (Vec3{}) {
		dir = DefaultMissionConfig().ApproachDirection
	}
	cfg.ApproachDirection = dir

	c := &MissionPhaseController{
		cfg:      cfg,
		asteroid: asteroid,
		strategy: strategy,
		resolver: resolver,
		log:      logging.Noop(),
		recorder: noopRecorder{},
		phase:    MissionApproach,
		outcome:  OutcomePending,
		fate:     FateIntact,

		asteroidPos: dir.Scale(cfg.AsteroidStartDistance),
		// Launch pad sits on the Earth surface under the approach corridor.
		launchPad: dir.Scale(EarthRadiusUnits),
	}
	c.spacecraftPos = c.launchPad
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tick advances the machine by dt seconds. Within one tick, kinematics
// update first, then transition checks, then event emission.
func (c *MissionPhaseController) Tick(dt float64) {
	if c.stopped || c.finished || dt <= 0 {
		return
	}
	c.elapsedInPhase += dt
	c.totalElapsed += dt

	c.updateKinematics(dt)

	switch c.phase {
	case MissionApproach:
		if c.elapsedInPhase >= c.cfg.ApproachDuration {
			c.transition(MissionLaunch)
			c.emit(EffectLaunch)
		}
	case MissionLaunch:
		if c.elapsedInPhase >= c.cfg.LaunchDuration {
			c.transition(MissionIntercept)
			if c.strategy.Code == model.StrategyLaserAblation {
				c.laserActive = true
				c.emit(EffectLaserBeamStart)
			}
		}
	case MissionIntercept:
		// Edge-triggered: the latch suppresses re-resolution even though the
		// distance condition stays true on the following ticks.
		if !c.outcomeDetermined && c.distanceToTarget() < c.cfg.InterceptThreshold {
			c.resolveOutcome()
			c.transition(MissionOutcome)
		}
	case MissionOutcome:
		if c.elapsedInPhase >= c.cfg.OutcomeDuration {
			c.finished = true
			if c.onFinished != nil {
				c.onFinished(c.outcome == OutcomeSuccess)
			}
		}
	}
}

func (c *MissionPhaseController) updateKinematics(dt float64) {
	// The asteroid closes radially for the whole run, independent of phase.
	c.asteroidPos = RadialPosition(
		Vec3{}, c.cfg.ApproachDirection,
		c.cfg.AsteroidStartDistance, c.cfg.AsteroidFloorDistance,
		c.totalElapsed, c.cfg.AsteroidApproachDuration,
	)

	// The spacecraft seeks the live asteroid position once launched.
	if c.phase == MissionLaunch || c.phase == MissionIntercept {
		speed := c.cfg.InterceptSpeed
		if c.strategy.StationKeeping {
			speed = c.cfg.StationKeepSpeed
		}
		c.spacecraftPos, _ = Seek(c.spacecraftPos, c.asteroidPos, speed, dt)
	}
}

// resolveOutcome fires the one-shot verdict and the strategy-specific
// effect triggers. Guarded by the outcome latch.
func (c *MissionPhaseController) resolveOutcome() {
	c.outcomeDetermined = true

	success := c.resolver.Resolve(c.strategy, c.asteroid)
	if success {
		c.outcome = OutcomeSuccess
	} else {
		c.outcome = OutcomeFailure
	}
	c.recorder.OutcomeResolved(success)

	if c.laserActive {
		c.laserActive = false
		c.emit(EffectLaserBeamStop)
	}
	if c.strategy.IsNuclear() {
		c.emit(EffectNuclearExplosion)
	} else {
		c.emit(EffectImpact)
	}

	if success && (c.strategy.IsNuclear() || c.asteroid.DiameterM < destroyedDiameterM) {
		c.fate = FateDestroyed
	} else {
		c.fate = FateDeflected
	}

	if success {
		c.emit(EffectSuccess)
	} else {
		c.emit(EffectFailure)
	}

	c.log.Info(context.Background(), "outcome resolved",
		logging.String("asteroid", c.asteroid.ID),
		logging.String("strategy", c.strategy.Code),
		logging.String("outcome", string(c.outcome)),
		logging.String("fate", string(c.fate)),
	)
}

func (c *MissionPhaseController) transition(next MissionPhase) {
	c.log.Debug(context.Background(), "mission phase change",
		logging.String("from", string(c.phase)),
		logging.String("to", string(next)),
	)
	c.phase = next
	c.elapsedInPhase = 0
}

func (c *MissionPhaseController) emit(e Effect) {
	if c.stopped || c.effects == nil {
		return
	}
	c.effects.OnEffect(e)
}

func (c *MissionPhaseController) distanceToTarget() float64 {
	return c.spacecraftPos.DistanceTo(c.asteroidPos)
}

// State returns a read-only snapshot, safe to take between ticks.
func (c *MissionPhaseController) State() Snapshot {
	remaining := c.cfg.TimeBudget - c.totalElapsed
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Phase:              "mission/" + string(c.phase),
		Outcome:            c.outcome,
		AsteroidFate:       c.fate,
		AsteroidPosition:   c.asteroidPos,
		SpacecraftPosition: c.spacecraftPos,
		DistanceToEarth:    c.asteroidPos.Norm(),
		DistanceToTarget:   c.distanceToTarget(),
		ElapsedInPhase:     c.elapsedInPhase,
		TimeRemaining:      remaining,
	}
}

// Outcome returns the current verdict (pending until resolved).
func (c *MissionPhaseController) Outcome() Outcome { return c.outcome }

// Finished reports whether the machine reached its terminal state.
func (c *MissionPhaseController) Finished() bool { return c.finished }

// Stop tears the controller down. No transition, effect, or completion
// callback fires after Stop returns.
func (c *MissionPhaseController) Stop() { c.stopped = true }
