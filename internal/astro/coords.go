// Package astro provides celestial coordinate transformations and sky math.
//
// Sphere convention: every unit-sphere point in this module uses a Y-up frame.
// The +Y axis points at the north celestial pole and the X-Z plane is the
// celestial equator, with RA = 0 on +X and RA = 90° on +Z. This is a choice
// made for the viewer, not an astronomical standard; packages that work in
// other frames (wcs, raycast) convert at their boundary.
package astro

import (
	"math"
)

// Equatorial holds J2000 equatorial coordinates in degrees.
type Equatorial struct {
	RA  float64 `json:"ra"`  // Right Ascension in degrees [0, 360)
	Dec float64 `json:"dec"` // Declination in degrees [-90, 90]
}

// Valid reports whether RA is in [0,360) and Dec in [-90,90].
func (e Equatorial) Valid() bool {
	return e.RA >= 0 && e.RA < 360 && e.Dec >= -90 && e.Dec <= 90
}

// SphereToEquatorial converts a point on (or near) the unit sphere to RA/Dec.
//
// The point is normalized first, so any non-zero finite vector converts. It
// returns false for a zero vector or one with a NaN or infinite component;
// poles still produce a number (RA is whatever atan2 gives).
func SphereToEquatorial(v Vec3) (Equatorial, bool) {
	if !v.IsFinite() || v.maxAbs() == 0 {
		return Equatorial{}, false
	}
	u := v.Normalized()
	u.Y = math.Max(-1, math.Min(1, u.Y))

	dec := math.Asin(u.Y)
	ra := math.Atan2(u.Z, u.X)

	return Equatorial{
		RA:  NormalizeRA(radToDeg(ra)),
		Dec: radToDeg(dec),
	}, true
}

// EquatorialToSphere converts RA/Dec to a unit vector in the sphere convention.
func EquatorialToSphere(e Equatorial) Vec3 {
	ra := degToRad(e.RA)
	dec := degToRad(e.Dec)
	cosDec := math.Cos(dec)

	return Vec3{
		X: cosDec * math.Cos(ra),
		Y: math.Sin(dec),
		Z: cosDec * math.Sin(ra),
	}
}

// NormalizeRA wraps an angle in degrees into [0, 360).
func NormalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	// -1e-15 + 360 rounds to 360
	if ra >= 360 {
		ra = 0
	}
	return ra
}

// SphereAngles returns the polar angle phi (from +Y, 0..π) and the azimuth
// theta (atan2(z, x), -π..π) of a unit vector.
func SphereAngles(v Vec3) (phi, theta float64) {
	phi = math.Acos(math.Max(-1, math.Min(1, v.Y)))
	theta = math.Atan2(v.Z, v.X)
	return phi, theta
}

// AngularSeparation returns the great-circle distance between two
// coordinates in degrees.
func AngularSeparation(a, b Equatorial) float64 {
	va := EquatorialToSphere(a)
	vb := EquatorialToSphere(b)
	// atan2 form stays accurate for tiny and near-antipodal separations
	return radToDeg(math.Atan2(va.Cross(vb).Norm(), va.Dot(vb)))
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
