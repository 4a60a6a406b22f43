package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/audio"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
	"github.com/signalsfoundry/asteroid-defense-simulator/timectrl"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.yaml", "path to the YAML scenario")
	asteroidID := flag.String("asteroid", "", "ID of the asteroid to target (default: first in scenario)")
	strategyCode := flag.String("strategy", model.StrategyKinetic, "defense strategy code")
	tick := flag.Duration("tick", 50*time.Millisecond, "tick interval")
	accelerated := flag.Bool("accelerated", false, "run as fast as possible instead of real-time")
	seed := flag.Int64("seed", 0, "RNG seed; 0 means time-seeded")
	withAudio := flag.Bool("audio", false, "synthesize sound effects")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	scenario, err := core.LoadScenarioFile(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load scenario: %v\n", err)
		os.Exit(1)
	}

	asteroid := pickAsteroid(scenario, *asteroidID)
	if asteroid == nil {
		fmt.Fprintf(os.Stderr, "asteroid %q not in scenario\n", *asteroidID)
		os.Exit(1)
	}
	strategy := pickStrategy(scenario, *strategyCode)
	if strategy == nil {
		fmt.Fprintf(os.Stderr, "strategy %q not in scenario\n", *strategyCode)
		os.Exit(1)
	}

	fmt.Printf("Target: %s (%.0f m, %.1f km/s, Torino %d)\n",
		asteroid.Name, asteroid.DiameterM, asteroid.VelocityKmS, asteroid.TorinoScale)
	fmt.Printf("Strategy: %s (estimated success %.0f%%)\n",
		strategy.Name, core.EstimateDisplayChance(strategy, asteroid))

	opts := []core.OrchestratorOption{
		core.WithLogger(log),
		core.WithObserver(consoleObserver{}),
	}
	if *seed != 0 {
		opts = append(opts, core.WithRNG(rand.New(rand.NewSource(*seed))))
	}

	var engine *audio.Engine
	if *withAudio {
		engine = audio.NewEngine(log)
		engine.Start(ctx)
		defer engine.Stop()
		opts = append(opts, core.WithEffects(engine))
	}

	orch := core.NewMissionOrchestrator(scenario.Run, asteroid, strategy, opts...)

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	driver := timectrl.NewTickDriver(*tick, mode)

	lastPhase := ""
	driver.AddListener(func(dt float64) {
		orch.Tick(dt)
		snap := orch.State()
		if snap.Phase != lastPhase {
			lastPhase = snap.Phase
			fmt.Printf("[%6.2fs left] phase=%s asteroid=%.2f from Earth, interceptor=%.2f from target\n",
				snap.TimeRemaining, snap.Phase, snap.DistanceToEarth, snap.DistanceToTarget)
		}
		if orch.Done() {
			driver.Stop()
		}
	})

	done := driver.Start(0)
	<-done
}

// pickAsteroid returns the requested asteroid, or the scenario's first when
// no ID was given.
func pickAsteroid(s *core.Scenario, id string) *model.Asteroid {
	if id == "" {
		if len(s.Asteroids) == 0 {
			return nil
		}
		return &s.Asteroids[0]
	}
	for i := range s.Asteroids {
		if s.Asteroids[i].ID == id {
			return &s.Asteroids[i]
		}
	}
	return nil
}

func pickStrategy(s *core.Scenario, code string) *model.DefenseStrategy {
	for i := range s.Strategies {
		if s.Strategies[i].Code == code {
			return &s.Strategies[i]
		}
	}
	return nil
}

// consoleObserver prints run milestones and the damage report to stdout.
type consoleObserver struct{}

func (consoleObserver) MissionComplete(success bool, deflectionPercent float64) {
	if success {
		fmt.Printf("\nIntercept SUCCESSFUL. Trajectory deflected by %.1f%%.\n", deflectionPercent)
		return
	}
	fmt.Printf("\nIntercept FAILED. Deflection achieved: %.1f%%.\n", deflectionPercent)
}

func (consoleObserver) ShowImpact() {
	fmt.Println("\nInterceptor missed. Impact trajectory confirmed.")
}

func (consoleObserver) ImpactComplete() {}

func (consoleObserver) DamageReady(d *model.DamageAssessment) {
	fmt.Println("\n=== Damage Assessment ===")
	fmt.Printf("Impact energy:     %.1f MT (%d Hiroshima bombs)\n", d.ImpactEnergyMT, d.EquivalentNukes)
	fmt.Printf("Casualties:        %s\n", d.Casualties.Label)
	fmt.Printf("Destruction zone:  %.1f km\n", d.DestructionRadiusKm)
	fmt.Printf("Crater diameter:   %.1f km\n", d.CraterDiameterKm)
	fmt.Printf("Fireball radius:   %.1f km\n", d.FireballRadiusKm)
	fmt.Printf("Shockwave radius:  %.1f km\n", d.ShockwaveRadiusKm)
	if d.TsunamiHeightM != nil {
		fmt.Printf("Tsunami height:    %.0f m\n", *d.TsunamiHeightM)
	}
	for _, effect := range d.EnvironmentalEffects {
		fmt.Printf("  - %s\n", effect)
	}
}
