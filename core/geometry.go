package core

import "math"

// EarthRadiusUnits is the Earth radius in simulation scene units. All mission
// geometry runs in scene units; the conversion to kilometres only matters for
// visualization placement.
const EarthRadiusUnits = 5.0

// UnitsPerKm converts kilometres to scene units.
const UnitsPerKm = EarthRadiusUnits / 6371.0

// Vec3 is a position or direction in simulation scene units. Earth sits at
// the origin.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Normalize returns the unit vector in the direction of v. Sub-epsilon
// vectors normalize to the zero vector rather than dividing by zero.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < separationEpsilon {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Lerp linearly interpolates between v and other by t in [0,1].
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
		Z: v.Z + (other.Z-v.Z)*t,
	}
}
