package model

import "math"

// SizeClass buckets an asteroid by diameter for strategy effectiveness lookups.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"  // < 100 m
	SizeMedium SizeClass = "medium" // 100–500 m
	SizeLarge  SizeClass = "large"  // >= 500 m
)

// AsteroidDensityKgM3 is the uniform bulk density assumed when deriving mass
// from diameter. Typical for stony (S-type) asteroids.
const AsteroidDensityKgM3 = 3000.0

// Asteroid describes an incoming object. The record is immutable for the
// duration of one mission run; the simulation core never mutates it.
//
// The orbital descriptors (SemiMajorAxisAU through OrbitalPeriodYears) are
// used only for visualization placement, never by the mission core.
type Asteroid struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	DiameterM    float64 `json:"diameter_m" yaml:"diameter_m"`
	VelocityKmS  float64 `json:"velocity_km_s" yaml:"velocity_km_s"`
	MassKg       float64 `json:"mass_kg,omitempty" yaml:"mass_kg,omitempty"` // derived; zero means "compute from diameter"
	CustomAuthor string  `json:"custom_author,omitempty" yaml:"custom_author,omitempty"`

	SemiMajorAxisAU    float64 `json:"semi_major_axis_au" yaml:"semi_major_axis_au"`
	Eccentricity       float64 `json:"eccentricity" yaml:"eccentricity"`
	InclinationDeg     float64 `json:"inclination_deg" yaml:"inclination_deg"`
	OrbitalPeriodYears float64 `json:"orbital_period_years" yaml:"orbital_period_years"`

	TorinoScale       int     `json:"torino_scale" yaml:"torino_scale"`
	PalermoScale      float64 `json:"palermo_scale" yaml:"palermo_scale"`
	ImpactProbability float64 `json:"impact_probability" yaml:"impact_probability"`
}

// Mass returns the asteroid's mass in kilograms. An explicitly set MassKg
// wins; otherwise the mass is derived from the diameter assuming a uniform
// spherical body at AsteroidDensityKgM3. Non-positive diameters yield zero.
func (a *Asteroid) Mass() float64 {
	if a.MassKg > 0 {
		return a.MassKg
	}
	if a.DiameterM <= 0 {
		return 0
	}
	r := a.DiameterM / 2
	return (4.0 / 3.0) * math.Pi * r * r * r * AsteroidDensityKgM3
}

// Size classifies the asteroid by diameter. The classification is derived
// once at run start and stays fixed for the run.
func (a *Asteroid) Size() SizeClass {
	switch {
	case a.DiameterM < 100:
		return SizeSmall
	case a.DiameterM < 500:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// Validate reports whether the asteroid carries usable physical parameters.
// The simulation tolerates invalid records (they degrade to zero-energy
// outcomes), but the dashboard rejects them up front.
func (a *Asteroid) Validate() error {
	if a.Name == "" {
		return ErrMissingName
	}
	if a.DiameterM <= 0 {
		return ErrNonPositiveDiameter
	}
	if a.VelocityKmS <= 0 {
		return ErrNonPositiveVelocity
	}
	if a.TorinoScale < 0 || a.TorinoScale > 10 {
		return ErrTorinoOutOfRange
	}
	return nil
}
