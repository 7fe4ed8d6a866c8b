package astro

import (
	"math"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/unit"
)

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// SpherePoint is a point on or near the unit sphere in the Y-up convention.
type SpherePoint = Vec3

// Norm returns the magnitude of the vector. Components are scaled by the
// largest one first, so the result neither overflows nor underflows while
// the true magnitude is representable.
func (v Vec3) Norm() float64 {
	m := v.maxAbs()
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return m
	}
	x, y, z := v.X/m, v.Y/m, v.Z/m
	return m * math.Sqrt(x*x+y*y+z*z)
}

// Normalized returns a unit vector in the same direction.
// A zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	m := v.maxAbs()
	if m == 0 {
		return Vec3{}
	}
	u := Vec3{X: v.X / m, Y: v.Y / m, Z: v.Z / m}
	n := math.Sqrt(u.X*u.X + u.Y*u.Y + u.Z*u.Z)
	return Vec3{X: u.X / n, Y: u.Y / n, Z: u.Z / n}
}

func (v Vec3) maxAbs() float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the dot product v · u.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the cross product v × u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// Rotate applies Rodrigues' rotation of v around a unit axis by angle radians.
func (v Vec3) Rotate(axis Vec3, angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Scale(c).
		Add(axis.Cross(v).Scale(s)).
		Add(axis.Scale(axis.Dot(v) * (1 - c)))
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// obliquityJ2000 is the mean obliquity of the ecliptic at J2000.0.
var obliquityJ2000 = coord.NewObliquity(unit.AngleFromDeg(23.4392911))

// Ecliptic holds ecliptic longitude and latitude in degrees.
type Ecliptic struct {
	Lon float64
	Lat float64
}

// EquatorialToEcliptic converts J2000 RA/Dec to J2000 ecliptic coordinates.
func EquatorialToEcliptic(e Equatorial) Ecliptic {
	eq := coord.Equatorial{
		RA:  unit.RAFromDeg(e.RA),
		Dec: unit.AngleFromDeg(e.Dec),
	}
	ecl := new(coord.Ecliptic).EqToEcl(&eq, obliquityJ2000)

	return Ecliptic{
		Lon: NormalizeRA(ecl.Lon.Deg()),
		Lat: ecl.Lat.Deg(),
	}
}
