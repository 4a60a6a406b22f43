package core

import (
	"math"
	"strings"
	"testing"
)

func TestAssessDamage_ChelyabinskClassIsLocal(t *testing.T) {
	// ~20 m stony bolide: mass from diameter, 19 km/s.
	massKg := (4.0 / 3.0) * math.Pi * 10 * 10 * 10 * 3000
	a := AssessDamage(massKg, 19.2)

	if a.ImpactEnergyMT <= 0.01 || a.ImpactEnergyMT >= 1 {
		t.Fatalf("expected sub-megaton energy for a 20 m bolide, got %v MT", a.ImpactEnergyMT)
	}
	if a.Casualties.Label != "Local Impact" {
		t.Fatalf("expected Local Impact, got %q", a.Casualties.Label)
	}
	if a.TsunamiHeightM != nil {
		t.Fatalf("sub-10 MT impact must not raise a tsunami")
	}
}

func TestAssessDamage_ExtinctionClass(t *testing.T) {
	// 2.6e11 kg at 18.5 km/s is just over the 10000 MT threshold.
	a := AssessDamage(2.6e11, 18.5)

	if a.ImpactEnergyMT <= 10000 {
		t.Fatalf("expected >10000 MT, got %v", a.ImpactEnergyMT)
	}
	if a.Casualties.Label != "Extinction Event" {
		t.Fatalf("expected Extinction Event, got %q", a.Casualties.Label)
	}
	if a.TsunamiHeightM == nil {
		t.Fatalf("expected a tsunami above 10 MT")
	}
	wantTsunami := math.Sqrt(a.ImpactEnergyMT) * 5
	if math.Abs(*a.TsunamiHeightM-wantTsunami) > 1e-9 {
		t.Fatalf("tsunami height = %v, want %v", *a.TsunamiHeightM, wantTsunami)
	}

	// All seven ladder labels crossed, tsunami label last.
	if len(a.EnvironmentalEffects) != 8 {
		t.Fatalf("expected 7 ladder effects plus tsunami, got %d: %v",
			len(a.EnvironmentalEffects), a.EnvironmentalEffects)
	}
	last := a.EnvironmentalEffects[len(a.EnvironmentalEffects)-1]
	if !strings.HasPrefix(last, "Mega-tsunami") {
		t.Fatalf("tsunami label must come last, got %q", last)
	}
}

func TestAssessDamage_BucketBoundariesAreStrict(t *testing.T) {
	// The City Destroyer bucket needs a strictly greater energy than its
	// 1 MT threshold.
	massForMT := func(mt float64) float64 {
		v := 20000.0 // 20 km/s in m/s
		return mt * joulesPerMegaton * 2 / (v * v)
	}

	at := AssessDamage(massForMT(0.999999), 20)
	if at.Casualties.Label != "Local Impact" {
		t.Fatalf("1 MT should stay Local Impact, got %q", at.Casualties.Label)
	}

	above := AssessDamage(massForMT(1.0001), 20)
	if above.Casualties.Label != "City Destroyer" {
		t.Fatalf("just above 1 MT should be City Destroyer, got %q", above.Casualties.Label)
	}
}

func TestAssessDamage_NonPositiveInputsDegrade(t *testing.T) {
	for _, in := range []struct{ m, v float64 }{{0, 20}, {-5, 20}, {1e9, 0}, {1e9, -1}} {
		a := AssessDamage(in.m, in.v)
		if a.ImpactEnergyMT != 0 {
			t.Fatalf("mass=%v velocity=%v: expected zero energy, got %v", in.m, in.v, a.ImpactEnergyMT)
		}
		if a.Casualties.Label != "Minor Event" {
			t.Fatalf("mass=%v velocity=%v: expected Minor Event, got %q", in.m, in.v, a.Casualties.Label)
		}
		if len(a.EnvironmentalEffects) != 0 {
			t.Fatalf("degraded assessment must carry no effects, got %v", a.EnvironmentalEffects)
		}
	}
}

func TestAssessDamage_IsPure(t *testing.T) {
	first := AssessDamage(4e9, 28)
	second := AssessDamage(4e9, 28)

	if first.ImpactEnergyMT != second.ImpactEnergyMT ||
		first.Casualties != second.Casualties ||
		first.EquivalentNukes != second.EquivalentNukes {
		t.Fatalf("same inputs must produce identical assessments")
	}
}

func TestAssessDamage_RadiiGrowWithEnergy(t *testing.T) {
	small := AssessDamage(1e9, 20)
	big := AssessDamage(1e12, 20)

	if big.DestructionRadiusKm <= small.DestructionRadiusKm {
		t.Fatalf("destruction radius must grow with energy")
	}
	if big.ShockwaveRadiusKm <= small.ShockwaveRadiusKm {
		t.Fatalf("shockwave radius must grow with energy")
	}
	if big.EquivalentNukes <= small.EquivalentNukes {
		t.Fatalf("equivalent nukes must grow with energy")
	}
}
