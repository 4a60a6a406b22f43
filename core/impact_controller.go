package core

import (
	"context"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// ImpactConfig carries the fixed nominal durations of the impact cinematic,
// in seconds. Every transition is purely elapsed-time-gated.
type ImpactConfig struct {
	ApproachDuration  float64 `yaml:"approach_duration"`
	ImpactDuration    float64 `yaml:"impact_duration"`
	ExplosionDuration float64 `yaml:"explosion_duration"`
	AftermathDuration float64 `yaml:"aftermath_duration"`
	DamagedDuration   float64 `yaml:"damaged_duration"`
	ResetDuration     float64 `yaml:"reset_duration"`

	// StartDistance is where the asteroid resumes its fall, normally the
	// mission machine's floor distance.
	StartDistance     float64 `yaml:"start_distance"`
	ApproachDirection Vec3    `yaml:"approach_direction"`
}

// DefaultImpactConfig returns the nominal cinematic timings.
func DefaultImpactConfig() ImpactConfig {
	return ImpactConfig{
		ApproachDuration:  2,
		ImpactDuration:    0.1,
		ExplosionDuration: 1.5,
		AftermathDuration: 1,
		DamagedDuration:   3,
		ResetDuration:     0.5,
		StartDistance:     8,
		ApproachDirection: DefaultMissionConfig().ApproachDirection,
	}
}

// ImpactPhaseController drives the impact cinematic
// approach → impact → explosion → aftermath → damaged → reset → complete
// after a failed intercept. The damage model runs exactly once, at the
// aftermath→damaged transition.
type ImpactPhaseController struct {
	cfg      ImpactConfig
	asteroid *model.Asteroid

	log      logging.Logger
	effects  EffectListener
	recorder MetricsRecorder

	phase          ImpactPhase
	elapsedInPhase float64
	totalElapsed   float64
	asteroidPos    Vec3

	// damageAssessed guards the one-shot damage computation against
	// irregular tick rates around the transition boundary.
	damageAssessed bool
	assessment     *model.DamageAssessment

	finished   bool
	stopped    bool
	onDamage   func(*model.DamageAssessment)
	onFinished func()
}

// ImpactOption customizes an ImpactPhaseController.
type ImpactOption func(*ImpactPhaseController)

// WithImpactLogger attaches a structured logger.
func WithImpactLogger(log logging.Logger) ImpactOption {
	return func(c *ImpactPhaseController) { c.log = log }
}

// WithImpactEffects attaches an effect-trigger listener.
func WithImpactEffects(l EffectListener) ImpactOption {
	return func(c *ImpactPhaseController) { c.effects = l }
}

// WithImpactRecorder attaches a metrics recorder.
func WithImpactRecorder(r MetricsRecorder) ImpactOption {
	return func(c *ImpactPhaseController) { c.recorder = r }
}

// WithDamageReady registers the damage-assessment display callback.
func WithDamageReady(fn func(*model.DamageAssessment)) ImpactOption {
	return func(c *ImpactPhaseController) { c.onDamage = fn }
}

// WithImpactFinished registers the completion callback, fired once at the
// reset→complete transition.
func WithImpactFinished(fn func()) ImpactOption {
	return func(c *ImpactPhaseController) { c.onFinished = fn }
}

// NewImpactPhaseController constructs the controller in its approach phase,
// with the asteroid back at the cinematic start distance.
func NewImpactPhaseController(cfg ImpactConfig, asteroid *model.Asteroid, opts ...ImpactOption) *ImpactPhaseController {
	dir := cfg.ApproachDirection.Normalize()
	if dir == (Vec3{}) {
		dir = DefaultMissionConfig().ApproachDirection
	}
	cfg.ApproachDirection = dir

	c := &ImpactPhaseController{
		cfg:         cfg,
		asteroid:    asteroid,
		log:         logging.Noop(),
		recorder:    noopRecorder{},
		phase:       ImpactApproach,
		asteroidPos: dir.Scale(cfg.StartDistance),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tick advances the cinematic by dt seconds.
func (c *ImpactPhaseController) Tick(dt float64) {
	if c.stopped || c.finished || dt <= 0 {
		return
	}
	c.elapsedInPhase += dt
	c.totalElapsed += dt

	// The asteroid falls from the cinematic start distance to the surface
	// during the approach phase and stays pinned there afterwards.
	c.asteroidPos = RadialPosition(
		Vec3{}, c.cfg.ApproachDirection,
		c.cfg.StartDistance, EarthRadiusUnits,
		c.totalElapsed, c.cfg.ApproachDuration,
	)

	switch c.phase {
	case ImpactApproach:
		if c.elapsedInPhase >= c.cfg.ApproachDuration {
			c.transition(ImpactStrike)
			c.emit(EffectImpact)
		}
	case ImpactStrike:
		if c.elapsedInPhase >= c.cfg.ImpactDuration {
			c.transition(ImpactExplosion)
		}
	case ImpactExplosion:
		if c.elapsedInPhase >= c.cfg.ExplosionDuration {
			c.transition(ImpactAftermath)
		}
	case ImpactAftermath:
		if c.elapsedInPhase >= c.cfg.AftermathDuration {
			c.transition(ImpactDamaged)
			c.assessDamage()
		}
	case ImpactDamaged:
		if c.elapsedInPhase >= c.cfg.DamagedDuration {
			// Entering reset signals the visual fade to collaborators.
			c.transition(ImpactReset)
		}
	case ImpactReset:
		if c.elapsedInPhase >= c.cfg.ResetDuration {
			c.transition(ImpactComplete)
			c.finished = true
			if c.onFinished != nil {
				c.onFinished()
			}
		}
	}
}

// assessDamage runs the damage model exactly once and hands the result to
// the display collaborator.
func (c *ImpactPhaseController) assessDamage() {
	if c.damageAssessed {
		return
	}
	c.damageAssessed = true

	c.assessment = AssessDamage(c.asteroid.Mass(), c.asteroid.VelocityKmS)
	c.recorder.DamageAssessed()
	c.log.Info(context.Background(), "damage assessed",
		logging.String("asteroid", c.asteroid.ID),
		logging.Any("impact_energy_mt", c.assessment.ImpactEnergyMT),
		logging.String("casualty_class", c.assessment.Casualties.Label),
	)
	if c.onDamage != nil {
		c.onDamage(c.assessment)
	}
}

func (c *ImpactPhaseController) transition(next ImpactPhase) {
	c.log.Debug(context.Background(), "impact phase change",
		logging.String("from", string(c.phase)),
		logging.String("to", string(next)),
	)
	c.phase = next
	c.elapsedInPhase = 0
}

func (c *ImpactPhaseController) emit(e Effect) {
	if c.stopped || c.effects == nil {
		return
	}
	c.effects.OnEffect(e)
}

// Assessment returns the damage assessment, nil until the damaged phase.
func (c *ImpactPhaseController) Assessment() *model.DamageAssessment { return c.assessment }

// State returns a read-only snapshot of the cinematic.
func (c *ImpactPhaseController) State() Snapshot {
	return Snapshot{
		Phase:            "impact/" + string(c.phase),
		Outcome:          OutcomeFailure,
		AsteroidFate:     FateIntact,
		AsteroidPosition: c.asteroidPos,
		DistanceToEarth:  c.asteroidPos.Norm(),
		ElapsedInPhase:   c.elapsedInPhase,
	}
}

// Finished reports whether the machine reached its terminal state.
func (c *ImpactPhaseController) Finished() bool { return c.finished }

// Stop tears the controller down; nothing fires afterwards.
func (c *ImpactPhaseController) Stop() { c.stopped = true }
