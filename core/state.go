package core

// MissionPhase names a stage of the intercept state machine.
type MissionPhase string

const (
	MissionApproach  MissionPhase = "approach"
	MissionLaunch    MissionPhase = "launch"
	MissionIntercept MissionPhase = "intercept"
	MissionOutcome   MissionPhase = "outcome"
)

// ImpactPhase names a stage of the impact cinematic state machine.
type ImpactPhase string

const (
	ImpactApproach  ImpactPhase = "approach"
	ImpactStrike    ImpactPhase = "impact"
	ImpactExplosion ImpactPhase = "explosion"
	ImpactAftermath ImpactPhase = "aftermath"
	ImpactDamaged   ImpactPhase = "damaged"
	ImpactReset     ImpactPhase = "reset"
	ImpactComplete  ImpactPhase = "complete"
)

// Outcome is the one-shot mission verdict.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// AsteroidFate records what the outcome did to the target model, so the
// render layer knows whether to shatter it or bend its trajectory.
type AsteroidFate string

const (
	FateIntact    AsteroidFate = "intact"
	FateDestroyed AsteroidFate = "destroyed"
	FateDeflected AsteroidFate = "deflected"
)

// Snapshot is the read-only simulation state published to rendering, HUD,
// and audio collaborators. It is a value copy; collaborators can never
// mutate controller state through it. Safe to take between ticks.
type Snapshot struct {
	// Phase is the active phase, qualified by machine: "mission/intercept",
	// "impact/explosion".
	Phase string `json:"phase"`

	Outcome      Outcome      `json:"outcome"`
	AsteroidFate AsteroidFate `json:"asteroid_fate"`

	AsteroidPosition   Vec3 `json:"asteroid_position"`
	SpacecraftPosition Vec3 `json:"spacecraft_position"`

	DistanceToEarth  float64 `json:"distance_to_earth"`
	DistanceToTarget float64 `json:"distance_to_target"`

	ElapsedInPhase float64 `json:"elapsed_in_phase"`
	TimeRemaining  float64 `json:"time_remaining"`
}
