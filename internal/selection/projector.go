// Package selection turns a dragged pixel rectangle into four sky corners and
// clips them to an angular window around the drag anchor.
package selection

import (
	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/raycast"
	"github.com/litescript/ls-skyselect/internal/screen"
	"github.com/litescript/ls-skyselect/internal/wcs"
)

// Projector converts a pixel to a sky coordinate. ok is false when the pixel
// has no coordinate, such as off the disk or a ray that misses the sphere.
type Projector interface {
	Project(p screen.Pixel) (astro.Equatorial, bool)
}

// ProjectorFunc adapts a function to the Projector interface.
type ProjectorFunc func(p screen.Pixel) (astro.Equatorial, bool)

// Project calls f(p).
func (f ProjectorFunc) Project(p screen.Pixel) (astro.Equatorial, bool) {
	return f(p)
}

// DiskProjector uses the orthographic disk mapping for a fixed camera
// looking at the sphere center.
type DiskProjector struct {
	Viewport screen.Viewport
}

// Project implements Projector.
func (d DiskProjector) Project(p screen.Pixel) (astro.Equatorial, bool) {
	v, ok := screen.ScreenToSphere(p, d.Viewport)
	if !ok {
		return astro.Equatorial{}, false
	}
	return astro.SphereToEquatorial(v)
}

// RayProjector casts a perspective ray through the pixel. Use it whenever
// the camera can move.
type RayProjector struct {
	Rect   raycast.Rect
	Camera raycast.Camera
	Radius float64
}

// Project implements Projector.
func (r RayProjector) Project(p screen.Pixel) (astro.Equatorial, bool) {
	v, ok := raycast.CastRay(p, r.Rect, r.Camera, r.Radius)
	if !ok {
		return astro.Equatorial{}, false
	}
	return astro.SphereToEquatorial(v)
}

// WCSProjector reads image pixels through a TAN solution.
type WCSProjector struct {
	Transform wcs.Transform
}

// Project implements Projector.
func (w WCSProjector) Project(p screen.Pixel) (astro.Equatorial, bool) {
	if !p.Finite() {
		return astro.Equatorial{}, false
	}
	e := w.Transform.PixelToWorld(p)
	return e, e.Valid()
}
