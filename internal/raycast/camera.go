// Package raycast finds where a perspective ray through a viewport pixel meets
// a sphere centered on the origin.
package raycast

import (
	"math"

	"github.com/litescript/ls-skyselect/internal/astro"
)

// Camera is a pinhole camera with a vertical field of view.
// Forward, Right and Up form an orthonormal basis.
type Camera struct {
	Position astro.Vec3
	Forward  astro.Vec3
	Right    astro.Vec3
	Up       astro.Vec3

	FOVDeg float64 // vertical
	Aspect float64 // width / height
}

var worldUp = astro.Vec3{X: 0, Y: 1, Z: 0}

// NewLookAt builds a camera at pos looking toward target.
func NewLookAt(pos, target, up astro.Vec3, fovDeg, aspect float64) Camera {
	fwd := target.Sub(pos).Normalized()
	right := fwd.Cross(up)
	if right.Norm() < 1e-9 {
		// looking along up; pick any perpendicular
		right = fwd.Cross(astro.Vec3{X: 0, Y: 0, Z: 1})
		if right.Norm() < 1e-9 {
			right = astro.Vec3{X: 1, Y: 0, Z: 0}
		}
	}
	right = right.Normalized()

	return Camera{
		Position: pos,
		Forward:  fwd,
		Right:    right,
		Up:       right.Cross(fwd).Normalized(),
		FOVDeg:   fovDeg,
		Aspect:   aspect,
	}
}

// NewOrbit builds a camera looking toward the origin from distance, rotated by
// yaw about the pole and then pitched about its own right axis. At zero yaw
// and pitch it sits on +Z looking down -Z with Y up. A zero distance puts the
// camera at the center of the sphere looking outward.
func NewOrbit(yawDeg, pitchDeg, distance, fovDeg, aspect float64) Camera {
	cam := Camera{
		Forward: astro.Vec3{X: 0, Y: 0, Z: -1},
		Right:   astro.Vec3{X: 1, Y: 0, Z: 0},
		Up:      worldUp,
		FOVDeg:  fovDeg,
		Aspect:  aspect,
	}
	cam = cam.Yaw(yawDeg).Pitch(pitchDeg)
	cam.Position = cam.Forward.Scale(-distance)
	return cam
}

// Yaw rotates the camera basis about the world pole, keeping the position.
func (c Camera) Yaw(deg float64) Camera {
	theta := deg * math.Pi / 180
	c.Forward = c.Forward.Rotate(worldUp, theta).Normalized()
	c.Right = c.Right.Rotate(worldUp, theta).Normalized()
	c.Up = c.Up.Rotate(worldUp, theta).Normalized()
	return c
}

// Pitch tilts forward and up about the camera's right axis.
func (c Camera) Pitch(deg float64) Camera {
	theta := deg * math.Pi / 180
	c.Forward = c.Forward.Rotate(c.Right, theta).Normalized()
	c.Up = c.Up.Rotate(c.Right, theta).Normalized()
	return c
}

// WithFOV returns the camera with a new vertical field of view.
func (c Camera) WithFOV(deg float64) Camera {
	c.FOVDeg = deg
	return c
}

func (c Camera) tanHalfFOV() float64 {
	return math.Tan(c.FOVDeg * math.Pi / 360)
}

// Valid reports whether the camera can cast rays.
func (c Camera) Valid() bool {
	if !c.Position.IsFinite() || !c.Forward.IsFinite() || !c.Right.IsFinite() || !c.Up.IsFinite() {
		return false
	}
	if c.Forward.Norm() == 0 || c.Right.Norm() == 0 || c.Up.Norm() == 0 {
		return false
	}
	return c.FOVDeg > 0 && c.FOVDeg < 180 && c.Aspect > 0 && !math.IsInf(c.Aspect, 0)
}

// Ray returns the normalized view direction through normalized device
// coordinates (x, y), each in [-1, 1] with y up.
func (c Camera) Ray(ndcX, ndcY float64) astro.Vec3 {
	tanHalf := c.tanHalfFOV()

	dir := c.Right.Scale(ndcX * tanHalf * c.Aspect).
		Add(c.Up.Scale(ndcY * tanHalf)).
		Add(c.Forward)

	return dir.Normalized()
}
