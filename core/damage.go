package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// joulesPerMegaton converts impact energy from joules to megatons of TNT.
const joulesPerMegaton = 4.184e15

// hiroshimaYieldMT is the reference yield used for the equivalent-nukes
// figure (~15 kt).
const hiroshimaYieldMT = 0.015

// casualtyBuckets is the ordered threshold ladder on impact energy (MT),
// evaluated from the highest threshold down. The buckets are mutually
// exclusive and exhaustive over [0, inf).
var casualtyBuckets = []struct {
	thresholdMT float64
	label       string
	min, max    int64
}{
	{10000, "Extinction Event", 1_000_000_000, 8_000_000_000},
	{1000, "Global Catastrophe", 100_000_000, 1_000_000_000},
	{100, "Continental Devastation", 10_000_000, 100_000_000},
	{10, "Regional Disaster", 1_000_000, 10_000_000},
	{1, "City Destroyer", 100_000, 1_000_000},
	{0.01, "Local Impact", 1_000, 100_000},
}

// minorEvent is the fallthrough bucket when no threshold is crossed.
var minorEvent = model.CasualtyRange{Label: "Minor Event", Min: 0, Max: 1_000}

// environmentalLadder appends one fixed label per energy threshold crossed,
// ascending. A non-nil tsunami height appends an extra formatted label last,
// so display ordering is reproducible.
var environmentalLadder = []struct {
	thresholdMT float64
	label       string
}{
	{0.01, "Fires ignited across the impact zone"},
	{0.1, "Dust cloud dims regional sunlight for days"},
	{1, "Severe shockwave damage over hundreds of kilometers"},
	{10, "Regional crop failure from atmospheric dust"},
	{100, "Global temperature drop of several degrees"},
	{1000, "Impact winter lasting years"},
	{10000, "Mass extinction level climate collapse"},
}

// AssessDamage maps an impact (mass in kg, velocity in km/s) to a damage
// assessment. Pure and total over positive inputs; non-positive mass or
// velocity degrades to the zero-energy Minor Event instead of producing NaN,
// since user-authored asteroids must never crash the session.
func AssessDamage(massKg, velocityKmS float64) *model.DamageAssessment {
	if massKg <= 0 || velocityKmS <= 0 {
		return &model.DamageAssessment{
			Casualties:           minorEvent,
			EnvironmentalEffects: []string{},
		}
	}

	velocityMS := velocityKmS * 1000
	energyMT := 0.5 * massKg * velocityMS * velocityMS / joulesPerMegaton

	a := &model.DamageAssessment{
		ImpactEnergyMT:      energyMT,
		Casualties:          casualtyRange(energyMT),
		DestructionRadiusKm: math.Cbrt(energyMT) * 2.5,
		CraterDiameterKm:    math.Pow(energyMT, 0.3) * 1.5,
		FireballRadiusKm:    math.Pow(energyMT, 0.4) * 0.5,
		ThermalRadiusKm:     math.Pow(energyMT, 0.4) * 2,
		ShockwaveRadiusKm:   math.Pow(energyMT, 0.33) * 4,
		EquivalentNukes:     int64(math.Round(energyMT * 1000 / hiroshimaYieldMT)),
	}

	if energyMT > 10 {
		h := math.Sqrt(energyMT) * 5
		a.TsunamiHeightM = &h
	}

	a.EnvironmentalEffects = environmentalEffects(energyMT, a.TsunamiHeightM)
	return a
}

func casualtyRange(energyMT float64) model.CasualtyRange {
	for _, b := range casualtyBuckets {
		if energyMT > b.thresholdMT {
			return model.CasualtyRange{Label: b.label, Min: b.min, Max: b.max}
		}
	}
	return minorEvent
}

func environmentalEffects(energyMT float64, tsunamiHeightM *float64) []string {
	effects := []string{}
	for _, e := range environmentalLadder {
		if energyMT > e.thresholdMT {
			effects = append(effects, e.label)
		}
	}
	if tsunamiHeightM != nil {
		effects = append(effects, fmt.Sprintf("Mega-tsunami with waves up to %.0f m", *tsunamiHeightM))
	}
	return effects
}
