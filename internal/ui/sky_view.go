package ui

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/footprint"
	"github.com/litescript/ls-skyselect/internal/raycast"
	"github.com/litescript/ls-skyselect/internal/screen"
	"github.com/litescript/ls-skyselect/internal/selection"
)

// ViewMode selects how the sky is projected onto the terminal.
type ViewMode int

const (
	ModeDisk ViewMode = iota // fixed orthographic disk
	ModeSky                  // perspective camera at the sphere center
)

func (v ViewMode) String() string {
	if v == ModeSky {
		return "Sky"
	}
	return "Disk"
}

const (
	// Star glyphs by magnitude
	glyphStarBright = '✶' // mag < 1.5
	glyphStarMedium = '✸' // mag 1.5-3.0
	glyphStarDim    = '·' // mag > 3.0

	// Star colors (grayscale so overlays stand out)
	colorStarBright = "255"
	colorStarMedium = "250"
	colorStarDim    = "244"

	colorGraticule = lipgloss.Color("238")
	colorEquator   = lipgloss.Color("60")
	colorRim       = lipgloss.Color("60")
	colorDrag      = lipgloss.Color("#7B2CBF")
	colorRegion    = lipgloss.Color("229")
	colorClipped   = lipgloss.Color("#E84A27")
	colorCursor    = lipgloss.Color("#9D4EDD")

	graticuleStepDeg = 30.0
	sampleStepDeg    = 0.5
)

// Overlay colors, one per telescope footprint.
var overlayColors = map[string]lipgloss.Color{
	"euclid":  "#3B82F6",
	"desi":    "#D946EF",
	"twomass": "#22C55E",
	"wise":    "#F59E0B",
	"all":     "#94A3B8",
}

// skyView is the projection geometry for one frame: canvas size in cells,
// the cell aspect ratio and the camera.
type skyView struct {
	mode       ViewMode
	w, h       int
	cellAspect float64 // cell width / cell height
	camera     raycast.Camera
}

// newSkyView builds the geometry. The perspective camera sits at the sphere
// center and looks outward.
func newSkyView(mode ViewMode, w, h int, cellAspect, yaw, pitch, fov float64) skyView {
	v := skyView{mode: mode, w: w, h: h, cellAspect: cellAspect}
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) * cellAspect / float64(h)
	}
	v.camera = raycast.NewOrbit(yaw, pitch, 0, fov, aspect)
	return v
}

// pixelHeight is the canvas height in square pixel units.
func (v skyView) pixelHeight() float64 {
	return float64(v.h) / v.cellAspect
}

func (v skyView) viewport() screen.Viewport {
	return screen.Viewport{Width: float64(v.w), Height: v.pixelHeight()}
}

func (v skyView) rect() raycast.Rect {
	return raycast.Rect{Width: float64(v.w), Height: v.pixelHeight()}
}

// cellPixel returns the pixel at the center of a cell.
func (v skyView) cellPixel(cx, cy int) screen.Pixel {
	return screen.Pixel{X: float64(cx) + 0.5, Y: (float64(cy) + 0.5) / v.cellAspect}
}

func (v skyView) pixelCell(p screen.Pixel) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y * v.cellAspect))
}

// projector returns the pixel-to-sky mapping for the mode.
func (v skyView) projector() selection.Projector {
	if v.mode == ModeSky {
		return selection.RayProjector{Rect: v.rect(), Camera: v.camera, Radius: 1}
	}
	return selection.DiskProjector{Viewport: v.viewport()}
}

// toCell projects a sky coordinate onto the canvas. ok is false for points
// on the hidden hemisphere, behind the camera or off the canvas.
func (v skyView) toCell(e astro.Equatorial) (x, y int, ok bool) {
	s := astro.EquatorialToSphere(e)

	var p screen.Pixel
	if v.mode == ModeSky {
		p, ok = raycast.Project(s, v.rect(), v.camera)
		if !ok {
			return 0, 0, false
		}
	} else {
		if s.Z < 0 {
			return 0, 0, false
		}
		p = screen.SphereToScreen(s, v.viewport())
	}

	if !p.Finite() {
		return 0, 0, false
	}
	x, y = v.pixelCell(p)
	return x, y, x >= 0 && x < v.w && y >= 0 && y < v.h
}

// render draws the sky into a canvas.
func (v skyView) render(stars []astro.Star, overlays []string) *canvas {
	c := newCanvas(v.w, v.h)
	if v.mode == ModeDisk {
		v.drawRim(c)
	}
	v.drawGraticule(c)
	for _, name := range overlays {
		v.drawFootprint(c, name)
	}
	for _, s := range stars {
		if x, y, ok := v.toCell(s.Coord); ok {
			glyph, color := starGlyph(s.Mag)
			c.set(x, y, glyph, color)
		}
	}
	return c
}

func (v skyView) drawRim(c *canvas) {
	vp := v.viewport()
	center, r := vp.Center(), vp.Radius()
	for a := 0.0; a < 360; a += sampleStepDeg {
		th := a * math.Pi / 180
		p := screen.Pixel{X: center.X + r*math.Cos(th), Y: center.Y + r*math.Sin(th)}
		x, y := v.pixelCell(p)
		c.set(x, y, '∙', colorRim)
	}
}

func (v skyView) drawGraticule(c *canvas) {
	for dec := -90 + graticuleStepDeg; dec < 90; dec += graticuleStepDeg {
		color := colorGraticule
		if dec == 0 {
			color = colorEquator
		}
		for ra := 0.0; ra < 360; ra += sampleStepDeg {
			if x, y, ok := v.toCell(astro.Equatorial{RA: ra, Dec: dec}); ok {
				c.set(x, y, '·', color)
			}
		}
	}
	for ra := 0.0; ra < 360; ra += graticuleStepDeg {
		for dec := -90.0; dec <= 90; dec += sampleStepDeg {
			if x, y, ok := v.toCell(astro.Equatorial{RA: ra, Dec: dec}); ok {
				c.set(x, y, '·', colorGraticule)
			}
		}
	}
}

// drawFootprint outlines a telescope's RA/Dec box.
func (v skyView) drawFootprint(c *canvas, name string) {
	r, ok := footprint.Lookup(name)
	if !ok {
		return
	}
	color, ok := overlayColors[name]
	if !ok {
		color = overlayColors["all"]
	}

	corners := []astro.Equatorial{
		{RA: r.RA.Min, Dec: r.Dec.Max},
		{RA: r.RA.Max, Dec: r.Dec.Max},
		{RA: r.RA.Max, Dec: r.Dec.Min},
		{RA: r.RA.Min, Dec: r.Dec.Min},
	}
	for i := range corners {
		v.drawEdge(c, corners[i], corners[(i+1)%4], false, '░', color)
	}
}

// drawRegion outlines a selection region and marks its corners.
func (v skyView) drawRegion(c *canvas, r selection.Region) {
	color := colorRegion
	if r.Clipped {
		color = colorClipped
	}
	for i := range r.Corners {
		v.drawEdge(c, r.Corners[i], r.Corners[(i+1)%4], true, '•', color)
	}
	for _, corner := range r.Corners {
		if x, y, ok := v.toCell(corner); ok {
			c.set(x, y, '+', color)
		}
	}
}

// drawEdge samples the edge from a to b in RA/Dec. With shortest set the RA
// step takes the short way around; otherwise it runs from a.RA to b.RA as
// given, which is how footprint boxes are defined.
func (v skyView) drawEdge(c *canvas, a, b astro.Equatorial, shortest bool, glyph rune, color lipgloss.Color) {
	dRA := b.RA - a.RA
	if shortest {
		dRA = normalizeAngle(dRA)
	}
	dDec := b.Dec - a.Dec

	span := math.Max(math.Abs(dRA), math.Abs(dDec))
	n := int(math.Ceil(span/sampleStepDeg*4)) + 1
	if n > 4096 {
		n = 4096
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		e := astro.Equatorial{RA: astro.NormalizeRA(a.RA + dRA*t), Dec: lerp(a.Dec, b.Dec, t)}
		if x, y, ok := v.toCell(e); ok {
			c.set(x, y, glyph, color)
		}
	}
}

// drawDrag outlines the screen-space drag rectangle.
func (v skyView) drawDrag(c *canvas, start, end screen.Pixel) {
	x0, y0 := v.pixelCell(start)
	x1, y1 := v.pixelCell(end)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for x := x0; x <= x1; x++ {
		c.set(x, y0, '─', colorDrag)
		c.set(x, y1, '─', colorDrag)
	}
	for y := y0; y <= y1; y++ {
		c.set(x0, y, '│', colorDrag)
		c.set(x1, y, '│', colorDrag)
	}
	c.set(x0, y0, '┌', colorDrag)
	c.set(x1, y0, '┐', colorDrag)
	c.set(x0, y1, '└', colorDrag)
	c.set(x1, y1, '┘', colorDrag)
}

// starGlyph returns the appropriate glyph and color for a star based on its magnitude.
// Brighter stars (lower magnitude) get more prominent symbols.
func starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	default:
		return glyphStarDim, colorStarDim
	}
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
