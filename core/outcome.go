package core

import (
	"math/rand"
	"time"

	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// RNG is the random source injected into outcome resolution and the
// narrative deflection rolls. *rand.Rand satisfies it; tests supply a seeded
// or fixed source for deterministic assertions.
type RNG interface {
	Float64() float64
}

// chanceFloor is the minimum resolved success chance in percent. Penalties
// never push a mission below a 20% chance.
const chanceFloor = 20.0

// OutcomeResolver computes the single probabilistic verdict of a mission.
type OutcomeResolver struct {
	rng RNG
}

// NewOutcomeResolver constructs a resolver around the given random source.
// A nil rng falls back to a time-seeded source.
func NewOutcomeResolver(rng RNG) *OutcomeResolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &OutcomeResolver{rng: rng}
}

// SuccessChance returns the resolved success chance in percent, after size
// and coordination penalties and the floor clamp. This is the authoritative
// schedule used by Resolve.
func (r *OutcomeResolver) SuccessChance(strategy *model.DefenseStrategy, asteroid *model.Asteroid) float64 {
	chance := strategy.SuccessRate * 100

	// Size penalties are cumulative: a >1000 m target takes both.
	if asteroid.DiameterM > 500 {
		chance -= 15
	}
	if asteroid.DiameterM > 1000 {
		chance -= 20
	}

	// High-Torino targets demand international coordination that only the
	// nuclear option short-circuits.
	if asteroid.TorinoScale >= 5 && !strategy.IsNuclear() {
		chance -= 20
	}

	if chance < chanceFloor {
		chance = chanceFloor
	}
	return chance
}

// Resolve draws the mission verdict: one uniform value in [0,100), success
// iff the draw lands under the clamped chance.
//
// Callers must invoke this at most once per run; the mission controller's
// outcome latch enforces that.
func (r *OutcomeResolver) Resolve(strategy *model.DefenseStrategy, asteroid *model.Asteroid) bool {
	return r.rng.Float64()*100 < r.SuccessChance(strategy, asteroid)
}

// EstimateDisplayChance is the display-only probability shown on the HUD
// before the outcome resolves. It folds in the strategy's effectiveness for
// the target size class and runs a lighter penalty schedule than Resolve,
// clamped to [20,95].
//
// The divergence from SuccessChance is preserved observed behavior; only the
// resolver's live draw is authoritative. Never use this to decide a mission.
func EstimateDisplayChance(strategy *model.DefenseStrategy, asteroid *model.Asteroid) float64 {
	chance := strategy.SuccessRate * strategy.EffectivenessFor(asteroid.Size()) * 100

	if asteroid.DiameterM > 500 {
		chance -= 10
	}
	if asteroid.DiameterM > 1000 {
		chance -= 15
	}
	if asteroid.TorinoScale >= 5 {
		chance -= 15
	}

	if chance < 20 {
		chance = 20
	}
	if chance > 95 {
		chance = 95
	}
	return chance
}
