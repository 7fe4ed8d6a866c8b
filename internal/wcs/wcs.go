// Package wcs implements the FITS World Coordinate System tangent-plane
// (TAN, gnomonic) projection with a linear CD matrix.
//
// Pixel positions here are image pixels in the FITS sense. The package works
// in its own RA/Dec terms; PixelToSphere and SphereToPixel convert at the
// boundary into the sphere convention documented in package astro.
// SIP distortion orders are carried on Transform but not applied.
package wcs

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/screen"
)

var (
	// ErrDegenerateTransform reports a transform that cannot be inverted at
	// the requested point: a singular CD matrix, or a world position 90° or
	// more from the reference point.
	ErrDegenerateTransform = errors.New("degenerate WCS transform")

	// ErrInvalidCoordinate reports a non-finite or out-of-range input.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// horizonEps is the smallest cosine of the angular distance from the
// reference point that WorldToPixel projects. cos(90°) evaluates to about
// 6e-17 in float64, so exact 90° inputs fall below it.
const horizonEps = 1e-12

// Transform is a TAN projection anchored at CRVAL on reference pixel CRPIX.
type Transform struct {
	CRPix1, CRPix2 float64 // reference pixel
	CRVal1, CRVal2 float64 // reference RA, Dec in degrees

	CD1_1, CD1_2 float64 // degrees per pixel
	CD2_1, CD2_2 float64

	CType1, CType2 string

	// SIP polynomial orders, stored but unused.
	AOrder, BOrder int

	CDelt1, CDelt2 float64
}

// DefaultTransform describes a 1024×1024 image centered on RA 0, Dec 0 at
// 0.36"/pixel with RA increasing to the left.
func DefaultTransform() Transform {
	return Transform{
		CRPix1: 512,
		CRPix2: 512,
		CRVal1: 0,
		CRVal2: 0,
		CD1_1:  -0.0001,
		CD2_2:  0.0001,
		CType1: "RA---TAN",
		CType2: "DEC--TAN",
		CDelt1: 0.0001,
		CDelt2: 0.0001,
	}
}

// Det returns the determinant of the CD matrix.
func (t Transform) Det() float64 {
	return t.CD1_1*t.CD2_2 - t.CD1_2*t.CD2_1
}

// Validate checks that every numeric field is finite and the CD matrix is
// invertible.
func (t Transform) Validate() error {
	for _, f := range []float64{t.CRPix1, t.CRPix2, t.CRVal1, t.CRVal2, t.CD1_1, t.CD1_2, t.CD2_1, t.CD2_2} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite field: %w", ErrDegenerateTransform)
		}
	}
	if t.CRVal2 < -90 || t.CRVal2 > 90 {
		return fmt.Errorf("CRVAL2 %.6f outside [-90, 90]: %w", t.CRVal2, ErrDegenerateTransform)
	}
	if t.Det() == 0 {
		return fmt.Errorf("CD matrix determinant is zero: %w", ErrDegenerateTransform)
	}
	return nil
}

// PixelToWorld maps an image pixel to RA/Dec. The reference pixel maps to
// exactly CRVAL. Non-finite input yields a non-finite result; check with
// Equatorial.Valid.
func (t Transform) PixelToWorld(p screen.Pixel) astro.Equatorial {
	dx := p.X - t.CRPix1
	dy := p.Y - t.CRPix2

	// intermediate world coordinates, radians
	xi := degToRad(t.CD1_1*dx + t.CD1_2*dy)
	eta := degToRad(t.CD2_1*dx + t.CD2_2*dy)

	ra0 := degToRad(t.CRVal1)
	dec0 := degToRad(t.CRVal2)
	sinDec0, cosDec0 := math.Sincos(dec0)

	rho := math.Hypot(xi, eta)
	if rho == 0 {
		return astro.Equatorial{RA: astro.NormalizeRA(t.CRVal1), Dec: t.CRVal2}
	}

	c := math.Atan(rho)
	sinC, cosC := math.Sincos(c)

	sinDec := cosC*sinDec0 + eta*sinC*cosDec0/rho
	dec := math.Asin(math.Max(-1, math.Min(1, sinDec)))
	ra := ra0 + math.Atan2(xi*sinC, rho*cosDec0*cosC-eta*sinDec0*sinC)

	return astro.Equatorial{
		RA:  astro.NormalizeRA(radToDeg(ra)),
		Dec: radToDeg(dec),
	}
}

// WorldToPixel maps RA/Dec to an image pixel. It fails with
// ErrDegenerateTransform when the CD matrix is singular or the point lies on
// or beyond the horizon of the tangent plane.
func (t Transform) WorldToPixel(w astro.Equatorial) (screen.Pixel, error) {
	if math.IsNaN(w.RA) || math.IsInf(w.RA, 0) || math.IsNaN(w.Dec) || math.IsInf(w.Dec, 0) {
		return screen.Pixel{}, fmt.Errorf("world (%v, %v): %w", w.RA, w.Dec, ErrInvalidCoordinate)
	}

	det := t.Det()
	if det == 0 {
		return screen.Pixel{}, fmt.Errorf("CD matrix determinant is zero: %w", ErrDegenerateTransform)
	}

	sinDec, cosDec := math.Sincos(degToRad(w.Dec))
	sinDec0, cosDec0 := math.Sincos(degToRad(t.CRVal2))
	sinDRA, cosDRA := math.Sincos(degToRad(w.RA - t.CRVal1))

	denom := sinDec0*sinDec + cosDec0*cosDec*cosDRA
	if !(denom > horizonEps) {
		return screen.Pixel{}, fmt.Errorf("(%.6f, %.6f) is 90° or more from reference point: %w",
			w.RA, w.Dec, ErrDegenerateTransform)
	}

	xi := radToDeg(cosDec * sinDRA / denom)
	eta := radToDeg((cosDec0*sinDec - sinDec0*cosDec*cosDRA) / denom)

	dx := (t.CD2_2*xi - t.CD1_2*eta) / det
	dy := (-t.CD2_1*xi + t.CD1_1*eta) / det

	return screen.Pixel{X: dx + t.CRPix1, Y: dy + t.CRPix2}, nil
}

// PixelToSphere maps an image pixel to a unit vector in the astro sphere
// convention.
func (t Transform) PixelToSphere(p screen.Pixel) astro.SpherePoint {
	return astro.EquatorialToSphere(t.PixelToWorld(p))
}

// SphereToPixel maps a sphere-convention vector to an image pixel.
func (t Transform) SphereToPixel(v astro.SpherePoint) (screen.Pixel, error) {
	w, ok := astro.SphereToEquatorial(v)
	if !ok {
		return screen.Pixel{}, fmt.Errorf("sphere point %v: %w", v, ErrInvalidCoordinate)
	}
	return t.WorldToPixel(w)
}

// Scale returns the pixel scale along each image axis in degrees per pixel.
func (t Transform) Scale() (x, y float64) {
	return math.Hypot(t.CD1_1, t.CD2_1), math.Hypot(t.CD1_2, t.CD2_2)
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
