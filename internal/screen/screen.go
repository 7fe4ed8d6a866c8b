// Package screen maps viewport pixels onto the visible hemisphere of the unit
// sphere using an orthographic disk, and back.
//
// The disk is centered in the viewport with radius min(W/2, H/2). Pixel y
// grows downward; sphere y grows toward the north celestial pole, so the
// axis is flipped on the way in and out.
package screen

import (
	"math"

	"github.com/litescript/ls-skyselect/internal/astro"
)

// Pixel is a viewport-relative position, origin top-left, y down.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both components are finite numbers.
func (p Pixel) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Center returns the viewport center.
func (vp Viewport) Center() Pixel {
	return Pixel{X: vp.Width / 2, Y: vp.Height / 2}
}

// Radius returns the radius of the projected disk.
func (vp Viewport) Radius() float64 {
	return math.Min(vp.Width/2, vp.Height/2)
}

func (vp Viewport) empty() bool {
	return !(vp.Width > 0 && vp.Height > 0) || math.IsInf(vp.Width, 0) || math.IsInf(vp.Height, 0)
}

// normalize returns the disk-relative position of p with y flipped.
func normalize(p Pixel, vp Viewport) (nx, ny float64) {
	c := vp.Center()
	r := vp.Radius()
	return (p.X - c.X) / r, -(p.Y - c.Y) / r
}

// ScreenToSphere returns the near-hemisphere point under p. ok is false when
// p lies outside the disk, is not finite, or the viewport is empty.
func ScreenToSphere(p Pixel, vp Viewport) (astro.Vec3, bool) {
	if !p.Finite() || vp.empty() {
		return astro.Vec3{}, false
	}

	nx, ny := normalize(p, vp)
	d2 := nx*nx + ny*ny
	if d2 > 1 {
		return astro.Vec3{}, false
	}

	return astro.Vec3{X: nx, Y: ny, Z: math.Sqrt(math.Max(0, 1-d2))}, true
}

// SphereToScreen projects v onto the viewport. The z component is ignored, so
// points on the far hemisphere land on top of their near-side mirror.
func SphereToScreen(v astro.Vec3, vp Viewport) Pixel {
	c := vp.Center()
	r := vp.Radius()
	return Pixel{X: c.X + v.X*r, Y: c.Y - v.Y*r}
}

// WithinDisk reports whether p falls inside or on the projected disk.
func WithinDisk(p Pixel, vp Viewport) bool {
	if !p.Finite() || vp.empty() {
		return false
	}
	nx, ny := normalize(p, vp)
	return nx*nx+ny*ny <= 1
}
