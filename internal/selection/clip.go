package selection

import (
	"math"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/footprint"
	"github.com/litescript/ls-skyselect/internal/screen"
)

// Corner indices into Region.Corners, in pixel space.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Limit is the maximum half-width in degrees of a selection around its
// anchor. A nil axis is unbounded.
type Limit struct {
	RA  *float64
	Dec *float64
}

// NewLimit returns a limit on both axes.
func NewLimit(raDeg, decDeg float64) *Limit {
	return &Limit{RA: &raDeg, Dec: &decDeg}
}

// Rect is a pixel rectangle with Min at the top-left.
type Rect struct {
	Min screen.Pixel
	Max screen.Pixel
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// RectFrom orders two drag points into a rectangle.
func RectFrom(start, end screen.Pixel) Rect {
	return Rect{
		Min: screen.Pixel{X: math.Min(start.X, end.X), Y: math.Min(start.Y, end.Y)},
		Max: screen.Pixel{X: math.Max(start.X, end.X), Y: math.Max(start.Y, end.Y)},
	}
}

// Corners returns the rectangle corners ordered TL, TR, BR, BL.
func (r Rect) Corners() [4]screen.Pixel {
	return [4]screen.Pixel{
		TopLeft:     r.Min,
		TopRight:    {X: r.Max.X, Y: r.Min.Y},
		BottomRight: r.Max,
		BottomLeft:  {X: r.Min.X, Y: r.Max.Y},
	}
}

// Region is the sky footprint of one selection update.
type Region struct {
	Corners [4]astro.Equatorial
	Clipped bool
	Rect    Rect
}

// Equal reports whether two regions have the same corners and clipped flag.
func (r Region) Equal(o Region) bool {
	return r.Corners == o.Corners && r.Clipped == o.Clipped
}

// Bounds returns the RA/Dec box spanned by the corners.
func (r Region) Bounds() footprint.Bounds {
	var ras, decs [4]float64
	for i, c := range r.Corners {
		ras[i] = astro.NormalizeRA(c.RA)
		decs[i] = c.Dec
	}
	return footprint.BoundsOf(ras[:], decs[:])
}

// window is the allowed RA/Dec range around an anchor.
type window struct {
	raSet          bool
	raMin, raMax   float64
	decMin, decMax float64
}

func newWindow(anchor astro.Equatorial, l Limit) window {
	w := window{decMin: -90, decMax: 90}

	if l.RA != nil && !math.IsNaN(*l.RA) && *l.RA < 180 {
		half := math.Max(0, *l.RA)
		center := astro.NormalizeRA(anchor.RA)
		w.raSet = true
		w.raMin = astro.NormalizeRA(center - half)
		w.raMax = astro.NormalizeRA(center + half)
	}
	if l.Dec != nil && !math.IsNaN(*l.Dec) {
		half := math.Max(0, *l.Dec)
		w.decMin = math.Max(-90, anchor.Dec-half)
		w.decMax = math.Min(90, anchor.Dec+half)
	}
	return w
}

func (w window) containsRA(ra float64) bool {
	if !w.raSet {
		return true
	}
	if w.raMin <= w.raMax {
		return ra >= w.raMin && ra <= w.raMax
	}
	// wraps through 0°
	return ra >= w.raMin || ra <= w.raMax
}

// clampRA moves ra onto whichever boundary is the shorter angular distance
// away. Ties go to raMax.
func (w window) clampRA(ra float64) float64 {
	dMin := math.Mod(w.raMin-ra+360, 360)
	dMax := math.Mod(ra-w.raMax+360, 360)
	if dMin < dMax {
		return w.raMin
	}
	return w.raMax
}

// Clip converts the rectangle spanned by start and end to sky corners. A
// corner the projector cannot convert takes the anchor's coordinate, and
// (0, 0) when the anchor cannot be converted either. With a non-nil limit,
// corners outside the window around the anchor are pulled onto its nearer
// edge and the region is marked clipped. Clip has no side effects.
func Clip(start, end screen.Pixel, proj Projector, limit *Limit) Region {
	rect := RectFrom(start, end)
	region := Region{Rect: rect}

	anchor, anchorOK := project(proj, start)
	if !anchorOK {
		anchor = astro.Equatorial{}
	}

	for i, p := range rect.Corners() {
		c, ok := project(proj, p)
		if !ok {
			c = anchor
		}
		region.Corners[i] = c
	}

	if limit == nil || !anchorOK {
		return region
	}

	w := newWindow(anchor, *limit)
	for i, c := range region.Corners {
		ra := astro.NormalizeRA(c.RA)
		dec := c.Dec

		inRA := w.containsRA(ra)
		inDec := dec >= w.decMin && dec <= w.decMax
		if !inRA || !inDec {
			region.Clipped = true
			if !inRA {
				ra = w.clampRA(ra)
			}
			if !inDec {
				dec = math.Max(w.decMin, math.Min(w.decMax, dec))
			}
		}

		// keep the caller's negative-RA convention
		if c.RA < 0 {
			ra -= 360
		}
		region.Corners[i] = astro.Equatorial{RA: ra, Dec: dec}
	}
	return region
}

// project treats a non-finite result as a failed conversion.
func project(proj Projector, p screen.Pixel) (astro.Equatorial, bool) {
	e, ok := proj.Project(p)
	if !ok || math.IsNaN(e.RA) || math.IsInf(e.RA, 0) || math.IsNaN(e.Dec) || math.IsInf(e.Dec, 0) {
		return astro.Equatorial{}, false
	}
	return e, true
}
