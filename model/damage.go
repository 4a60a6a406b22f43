package model

// CasualtyRange is an order-of-magnitude casualty estimate attached to a
// damage assessment, e.g. "City Destroyer" with 100K–1M.
type CasualtyRange struct {
	Label string `json:"label"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
}

// DamageAssessment is the derived, immutable record computed once from
// (mass, velocity) when the impact cinematic reaches its damaged phase.
type DamageAssessment struct {
	ImpactEnergyMT float64 `json:"impact_energy_mt"`

	Casualties CasualtyRange `json:"casualties"`

	DestructionRadiusKm float64 `json:"destruction_radius_km"`
	CraterDiameterKm    float64 `json:"crater_diameter_km"`
	FireballRadiusKm    float64 `json:"fireball_radius_km"`
	ThermalRadiusKm     float64 `json:"thermal_radius_km"`
	ShockwaveRadiusKm   float64 `json:"shockwave_radius_km"`

	// TsunamiHeightM is nil when the impact energy is too low to raise one.
	TsunamiHeightM *float64 `json:"tsunami_height_m,omitempty"`

	// EnvironmentalEffects is ordered for display reproducibility:
	// energy thresholds ascending, mega-tsunami last.
	EnvironmentalEffects []string `json:"environmental_effects"`

	EquivalentNukes int64 `json:"equivalent_nukes"`
}
