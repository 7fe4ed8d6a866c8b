package raycast

import (
	"math"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/screen"
)

// Rect is the on-screen rectangle of the rendering surface.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

func (r Rect) valid() bool {
	for _, f := range []float64{r.Left, r.Top, r.Width, r.Height} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// NDC maps a pixel to normalized device coordinates, y up.
func (r Rect) NDC(p screen.Pixel) (x, y float64) {
	x = (p.X-r.Left)/r.Width*2 - 1
	y = -(p.Y-r.Top)/r.Height*2 + 1
	return x, y
}

// CastRay returns the nearest point in front of the camera where the ray
// through p meets the sphere of the given radius at the origin. A radius of
// zero or less means the unit sphere. ok is false when the ray misses or any
// input is degenerate.
func CastRay(p screen.Pixel, rect Rect, cam Camera, radius float64) (astro.Vec3, bool) {
	if radius <= 0 || math.IsNaN(radius) {
		radius = 1
	}
	if !p.Finite() || !rect.valid() || !cam.Valid() || math.IsInf(radius, 0) {
		return astro.Vec3{}, false
	}

	dir := cam.Ray(rect.NDC(p))
	t := intersectSphere(cam.Position, dir, radius)
	if t <= 0 {
		return astro.Vec3{}, false
	}

	hit := cam.Position.Add(dir.Scale(t))
	if !hit.IsFinite() {
		return astro.Vec3{}, false
	}
	return hit, true
}

// intersectSphere solves |o + t·d|² = r² for unit d and returns the smallest
// positive t, or -1 on a miss.
func intersectSphere(o, d astro.Vec3, r float64) float64 {
	b := 2 * o.Dot(d)
	c := o.Dot(o) - r*r

	disc := b*b - 4*c
	if disc < 0 {
		return -1
	}

	sq := math.Sqrt(disc)
	t1 := (-b - sq) / 2
	t2 := (-b + sq) / 2

	switch {
	case t1 > 0:
		return t1 // t1 <= t2
	case t2 > 0:
		return t2
	default:
		return -1
	}
}

// Project maps a world point to its pixel on rect. ok is false when v is
// behind the camera or the inputs are degenerate.
func Project(v astro.Vec3, rect Rect, cam Camera) (screen.Pixel, bool) {
	if !v.IsFinite() || !rect.valid() || !cam.Valid() {
		return screen.Pixel{}, false
	}

	d := v.Sub(cam.Position)
	z := d.Dot(cam.Forward)
	if z <= 0 {
		return screen.Pixel{}, false
	}

	tanHalf := cam.tanHalfFOV()
	ndcX := d.Dot(cam.Right) / (z * tanHalf * cam.Aspect)
	ndcY := d.Dot(cam.Up) / (z * tanHalf)

	return screen.Pixel{
		X: rect.Left + (ndcX+1)/2*rect.Width,
		Y: rect.Top + (1-ndcY)/2*rect.Height,
	}, true
}
