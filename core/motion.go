package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// PlacementModel positions a body in the visualization scene for a given
// wall-clock time. Placement is presentation only; the mission machines run
// their own kinematics and never consult these models.
type PlacementModel interface {
	Position(t time.Time) Vec3
}

// KeplerianPlacement places an asteroid on a simplified Keplerian ellipse
// built from its orbital descriptors. Not navigation-grade; it only has to
// look right at scene scale.
type KeplerianPlacement struct {
	semiMajorAxisAU float64
	eccentricity    float64
	inclinationRad  float64
	periodYears     float64
	epoch           time.Time
}

// sceneUnitsPerAU scales heliocentric distances down to something that fits
// the scene alongside an Earth of radius EarthRadiusUnits.
const sceneUnitsPerAU = 60.0

// NewKeplerianPlacement builds a placement model from the asteroid's orbital
// descriptors, anchored at the given epoch.
func NewKeplerianPlacement(a *model.Asteroid, epoch time.Time) *KeplerianPlacement {
	period := a.OrbitalPeriodYears
	if period <= 0 {
		period = 1
	}
	axis := a.SemiMajorAxisAU
	if axis <= 0 {
		axis = 1
	}
	return &KeplerianPlacement{
		semiMajorAxisAU: axis,
		eccentricity:    clamp(a.Eccentricity, 0, 0.95),
		inclinationRad:  a.InclinationDeg * math.Pi / 180,
		periodYears:     period,
		epoch:           epoch,
	}
}

// Position walks the ellipse at a uniform angular rate, a simplification
// of Kepler's second law that is invisible at scene scale.
func (k *KeplerianPlacement) Position(t time.Time) Vec3 {
	const secondsPerYear = 365.25 * 24 * 3600
	elapsed := t.Sub(k.epoch).Seconds()
	theta := 2 * math.Pi * math.Mod(elapsed/(k.periodYears*secondsPerYear), 1)

	// Ellipse radius at true anomaly theta.
	r := k.semiMajorAxisAU * (1 - k.eccentricity*k.eccentricity) /
		(1 + k.eccentricity*math.Cos(theta))
	r *= sceneUnitsPerAU

	x := r * math.Cos(theta)
	inPlaneY := r * math.Sin(theta)
	return Vec3{
		X: x,
		Y: inPlaneY * math.Sin(k.inclinationRad),
		Z: inPlaneY * math.Cos(k.inclinationRad),
	}
}

// ParkingOrbitPlacement places the interceptor spacecraft on its low-Earth
// parking orbit before the mission starts, using SGP4 propagation of a TLE.
type ParkingOrbitPlacement struct {
	sat satellite.Satellite
}

// NewParkingOrbitFromTLE constructs a parking-orbit model from TLE lines.
func NewParkingOrbitFromTLE(line1, line2 string) *ParkingOrbitPlacement {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &ParkingOrbitPlacement{sat: sat}
}

// An ISS-class TLE. The scene only needs a plausible low-Earth track for the
// waiting interceptor, not the real vehicle's elements.
const (
	defaultParkingTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	defaultParkingTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

// NewDefaultParkingOrbit places the interceptor on the stock low-Earth
// parking orbit used when the scenario supplies no TLE of its own.
func NewDefaultParkingOrbit() *ParkingOrbitPlacement {
	return NewParkingOrbitFromTLE(defaultParkingTLE1, defaultParkingTLE2)
}

// Position propagates the orbit to t and scales ECI kilometres into scene
// units.
func (p *ParkingOrbitPlacement) Position(t time.Time) Vec3 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	return Vec3{
		X: posECI.X * UnitsPerKm,
		Y: posECI.Y * UnitsPerKm,
		Z: posECI.Z * UnitsPerKm,
	}
}

// FixedPlacement pins a body at one scene position.
type FixedPlacement struct {
	At Vec3
}

// Position returns the fixed position regardless of time.
func (f *FixedPlacement) Position(time.Time) Vec3 { return f.At }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
