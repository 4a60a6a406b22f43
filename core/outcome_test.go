package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// fixedRNG always returns the same draw, for deterministic verdicts.
type fixedRNG struct{ v float64 }

func (f fixedRNG) Float64() float64 { return f.v }

func TestSuccessChance_PenaltySchedule(t *testing.T) {
	kinetic := &model.DefenseStrategy{Code: model.StrategyKinetic, SuccessRate: 0.75}
	nuclear := &model.DefenseStrategy{Code: model.StrategyNuclear, SuccessRate: 0.85}

	cases := []struct {
		name     string
		strategy *model.DefenseStrategy
		asteroid model.Asteroid
		want     float64
	}{
		{
			name:     "no penalties",
			strategy: kinetic,
			asteroid: model.Asteroid{DiameterM: 370, VelocityKmS: 30, TorinoScale: 4},
			want:     75,
		},
		{
			name:     "large target",
			strategy: kinetic,
			asteroid: model.Asteroid{DiameterM: 600, VelocityKmS: 30, TorinoScale: 0},
			want:     60,
		},
		{
			name:     "very large target takes both size penalties",
			strategy: kinetic,
			asteroid: model.Asteroid{DiameterM: 1400, VelocityKmS: 30, TorinoScale: 0},
			want:     40,
		},
		{
			name:     "high torino without nuclear",
			strategy: kinetic,
			asteroid: model.Asteroid{DiameterM: 370, VelocityKmS: 30, TorinoScale: 8},
			want:     55,
		},
		{
			name:     "nuclear skips the torino penalty",
			strategy: nuclear,
			asteroid: model.Asteroid{DiameterM: 370, VelocityKmS: 30, TorinoScale: 8},
			want:     85,
		},
		{
			name:     "floor clamps stacked penalties",
			strategy: kinetic,
			asteroid: model.Asteroid{DiameterM: 1400, VelocityKmS: 30, TorinoScale: 9},
			want:     20,
		},
	}

	resolver := NewOutcomeResolver(fixedRNG{0.5})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolver.SuccessChance(tc.strategy, &tc.asteroid)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("SuccessChance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSuccessChance_VeryLargeDropsAtLeast35Points(t *testing.T) {
	s := &model.DefenseStrategy{Code: model.StrategyKinetic, SuccessRate: 1.0}
	small := model.Asteroid{DiameterM: 50, VelocityKmS: 20}
	huge := model.Asteroid{DiameterM: 1200, VelocityKmS: 20}

	resolver := NewOutcomeResolver(fixedRNG{0.5})
	drop := resolver.SuccessChance(s, &small) - resolver.SuccessChance(s, &huge)
	if drop < 35 {
		t.Fatalf("a >1000 m target should cost at least 35 points, dropped only %v", drop)
	}
}

func TestResolve_DrawAgainstChance(t *testing.T) {
	s := &model.DefenseStrategy{Code: model.StrategyKinetic, SuccessRate: 0.75}
	a := model.Asteroid{DiameterM: 370, VelocityKmS: 30}

	// Chance is 75: a 0.74 draw succeeds, a 0.76 draw fails.
	if !NewOutcomeResolver(fixedRNG{0.74}).Resolve(s, &a) {
		t.Fatalf("draw below the chance must succeed")
	}
	if NewOutcomeResolver(fixedRNG{0.76}).Resolve(s, &a) {
		t.Fatalf("draw above the chance must fail")
	}
}

func TestEstimateDisplayChance_UsesEffectivenessAndClamps(t *testing.T) {
	s := &model.DefenseStrategy{
		Code:        model.StrategyKinetic,
		SuccessRate: 0.75,
		Effectiveness: map[model.SizeClass]float64{
			model.SizeSmall:  0.9,
			model.SizeMedium: 0.7,
			model.SizeLarge:  0.4,
		},
	}

	medium := model.Asteroid{DiameterM: 370, VelocityKmS: 30}
	if got := EstimateDisplayChance(s, &medium); math.Abs(got-52.5) > 1e-9 {
		t.Fatalf("medium target estimate = %v, want 52.5", got)
	}

	// A tiny target with a strong strategy pins at the 95 ceiling.
	confident := &model.DefenseStrategy{Code: model.StrategyNuclear, SuccessRate: 1.0}
	small := model.Asteroid{DiameterM: 20, VelocityKmS: 19}
	if got := EstimateDisplayChance(confident, &small); got != 95 {
		t.Fatalf("estimate ceiling = %v, want 95", got)
	}

	// A huge high-Torino target pins at the 20 floor.
	weak := &model.DefenseStrategy{Code: model.StrategyIonBeam, SuccessRate: 0.4}
	huge := model.Asteroid{DiameterM: 1400, VelocityKmS: 35, TorinoScale: 8}
	if got := EstimateDisplayChance(weak, &huge); got != 20 {
		t.Fatalf("estimate floor = %v, want 20", got)
	}
}

func TestEstimateDisplayChance_DivergesFromResolvedChance(t *testing.T) {
	// The HUD estimate and the resolver's schedule are intentionally
	// different models; make sure nobody "fixes" one into the other.
	s := &model.DefenseStrategy{
		Code:          model.StrategyKinetic,
		SuccessRate:   0.75,
		Effectiveness: map[model.SizeClass]float64{model.SizeMedium: 0.7},
	}
	a := model.Asteroid{DiameterM: 370, VelocityKmS: 30}

	resolver := NewOutcomeResolver(fixedRNG{0.5})
	if EstimateDisplayChance(s, &a) == resolver.SuccessChance(s, &a) {
		t.Fatalf("display estimate should not equal the resolver chance for this pair")
	}
}
