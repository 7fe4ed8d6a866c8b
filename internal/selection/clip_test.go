package selection

import (
	"math"
	"testing"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/screen"
)

// linearProjector maps pixels onto a flat patch of sky: RA grows to the
// right and Dec grows upward from (ra0, dec0) at pixel (x0, y0).
func linearProjector(x0, y0, ra0, dec0, degPerPixel float64) Projector {
	return ProjectorFunc(func(p screen.Pixel) (astro.Equatorial, bool) {
		return astro.Equatorial{
			RA:  astro.NormalizeRA(ra0 + (p.X-x0)*degPerPixel),
			Dec: dec0 - (p.Y-y0)*degPerPixel,
		}, true
	})
}

// fixedProjector returns the coordinate registered for each pixel.
type fixedProjector map[screen.Pixel]astro.Equatorial

func (f fixedProjector) Project(p screen.Pixel) (astro.Equatorial, bool) {
	e, ok := f[p]
	return e, ok
}

func TestClip_RectangleOrdering(t *testing.T) {
	proj := linearProjector(0, 0, 10, 10, 0.01)

	// dragging up and to the left still yields TL, TR, BR, BL
	r := Clip(screen.Pixel{X: 200, Y: 150}, screen.Pixel{X: 100, Y: 100}, proj, nil)

	wantRect := Rect{Min: screen.Pixel{X: 100, Y: 100}, Max: screen.Pixel{X: 200, Y: 150}}
	if r.Rect != wantRect {
		t.Errorf("Rect = %+v, want %+v", r.Rect, wantRect)
	}

	want := [4]astro.Equatorial{
		TopLeft:     {RA: 11, Dec: 9},
		TopRight:    {RA: 12, Dec: 9},
		BottomRight: {RA: 12, Dec: 8.5},
		BottomLeft:  {RA: 11, Dec: 8.5},
	}
	for i := range want {
		if math.Abs(r.Corners[i].RA-want[i].RA) > 1e-9 || math.Abs(r.Corners[i].Dec-want[i].Dec) > 1e-9 {
			t.Errorf("corner %d = %v, want %v", i, r.Corners[i], want[i])
		}
	}
	if r.Clipped {
		t.Error("unlimited region marked clipped")
	}
}

func TestClip_WrapAround(t *testing.T) {
	proj := linearProjector(100, 100, 359, 0, 1)
	limit := NewLimit(2, 10)

	// start at RA 359, drag right to RA 5
	r := Clip(screen.Pixel{X: 100, Y: 100}, screen.Pixel{X: 106, Y: 100}, proj, limit)

	if !r.Clipped {
		t.Fatal("region not clipped")
	}
	if got := r.Corners[TopRight].RA; math.Abs(got-1) > 1e-9 {
		t.Errorf("RA 5 clipped to %v, want 1 (not 357)", got)
	}
	if got := r.Corners[TopLeft].RA; math.Abs(got-359) > 1e-9 {
		t.Errorf("anchor RA = %v, want 359", got)
	}

	// a corner inside the wrapped window is left alone
	r = Clip(screen.Pixel{X: 100, Y: 100}, screen.Pixel{X: 98, Y: 100}, proj, limit)
	if r.Clipped {
		t.Error("RA 357..359 selection clipped")
	}
	if got := r.Corners[TopLeft].RA; math.Abs(got-357) > 1e-9 {
		t.Errorf("RA = %v, want 357", got)
	}
}

func TestClip_NearerBoundary(t *testing.T) {
	tests := []struct {
		name   string
		anchor float64
		corner float64
		want   float64
	}{
		{"wrapped window, just past max", 359, 5, 1},
		{"wrapped window, just before min", 1, 350, 359},
		{"plain window, past max", 100, 110, 102},
		{"plain window, before min", 100, 90, 98},
		{"plain window, across the seam", 10, 350, 8},
		{"opposite side ties go to max", 100, 280, 102},
		{"plain window, far side nearer min", 64, 300, 62},
		{"plain window, far side nearer max", 64, 200, 66},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj := fixedProjector{
				{X: 0, Y: 0}: {RA: tt.anchor, Dec: 0},
				{X: 1, Y: 0}: {RA: tt.corner, Dec: 0},
				{X: 1, Y: 1}: {RA: tt.anchor, Dec: 0},
				{X: 0, Y: 1}: {RA: tt.anchor, Dec: 0},
			}
			r := Clip(screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 1, Y: 1}, proj, NewLimit(2, 5))
			if !r.Clipped {
				t.Fatal("not clipped")
			}
			if got := r.Corners[TopRight].RA; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("clamped RA = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClip_ZeroRALimit(t *testing.T) {
	proj := fixedProjector{
		{X: 0, Y: 0}: {RA: 100, Dec: 0},
		{X: 1, Y: 0}: {RA: 101, Dec: 0},
		{X: 1, Y: 1}: {RA: 99, Dec: 0.5},
		{X: 0, Y: 1}: {RA: 100, Dec: 0.5},
	}
	r := Clip(screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 1, Y: 1}, proj, NewLimit(0, 5))
	if !r.Clipped {
		t.Fatal("not clipped")
	}
	for i, c := range r.Corners {
		if c.RA != 100 {
			t.Errorf("corner %d RA = %v, want 100", i, c.RA)
		}
	}
	if r.Corners[BottomLeft].Dec != 0.5 {
		t.Errorf("Dec changed to %v", r.Corners[BottomLeft].Dec)
	}
}

func TestClip_Pole(t *testing.T) {
	for _, bad := range []float64{91, 95} {
		proj := fixedProjector{
			{X: 0, Y: 0}: {RA: 10, Dec: 89},
			{X: 1, Y: 0}: {RA: 10, Dec: bad},
			{X: 1, Y: 1}: {RA: 10, Dec: 88.5},
			{X: 0, Y: 1}: {RA: 10, Dec: 87},
		}

		r := Clip(screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 1, Y: 1}, proj, NewLimit(5, 1))
		if !r.Clipped {
			t.Errorf("dec %v: not clipped", bad)
		}
		if got := r.Corners[TopRight].Dec; got != 90 {
			t.Errorf("dec %v clamped to %v, want 90", bad, got)
		}
		if got := r.Corners[BottomLeft].Dec; got != 88 {
			t.Errorf("dec 87 clamped to %v, want 88", got)
		}
		for i, c := range r.Corners {
			if math.IsNaN(c.RA) || math.IsNaN(c.Dec) {
				t.Errorf("corner %d = %v has NaN", i, c)
			}
		}
	}
}

func TestClip_EndToEnd(t *testing.T) {
	// anchor (100,100) is RA 64, Dec 19
	proj := linearProjector(100, 100, 64, 19, 0.05)

	r := Clip(screen.Pixel{X: 100, Y: 100}, screen.Pixel{X: 200, Y: 150}, proj, NewLimit(2, 1))

	if len(r.Corners) != 4 {
		t.Fatalf("got %d corners", len(r.Corners))
	}
	// the raw corners reach RA 69 and Dec 16.5
	if !r.Clipped {
		t.Error("clipped = false, want true")
	}
	for i, c := range r.Corners {
		if c.Dec < 18 || c.Dec > 20 {
			t.Errorf("corner %d dec = %v, outside [18, 20]", i, c.Dec)
		}
		if c.RA < 62 || c.RA > 66 {
			t.Errorf("corner %d ra = %v, outside [62, 66]", i, c.RA)
		}
	}
	if r.Corners[TopRight].RA != 66 || r.Corners[BottomRight].Dec != 18 {
		t.Errorf("corners = %v", r.Corners)
	}
}

func TestClip_EndToEndDisk(t *testing.T) {
	proj := DiskProjector{Viewport: screen.Viewport{Width: 400, Height: 400}}
	start := screen.Pixel{X: 100, Y: 100}

	anchor, ok := proj.Project(start)
	if !ok {
		t.Fatal("anchor off disk")
	}

	r := Clip(start, screen.Pixel{X: 200, Y: 150}, proj, NewLimit(2, 1))

	if !r.Clipped {
		t.Error("clipped = false, want true")
	}
	for i, c := range r.Corners {
		if c.Dec < anchor.Dec-1-1e-9 || c.Dec > anchor.Dec+1+1e-9 {
			t.Errorf("corner %d dec = %v, outside anchor ±1", i, c.Dec)
		}
		if d := math.Abs(c.RA - anchor.RA); d > 2+1e-9 {
			t.Errorf("corner %d ra = %v, more than 2° from %v", i, c.RA, anchor.RA)
		}
	}
}

func TestClip_Idempotent(t *testing.T) {
	proj := DiskProjector{Viewport: screen.Viewport{Width: 640, Height: 480}}
	start, end := screen.Pixel{X: 250, Y: 200}, screen.Pixel{X: 400, Y: 330}
	limit := NewLimit(3, 2)

	a := Clip(start, end, proj, limit)
	b := Clip(start, end, proj, limit)

	if a != b {
		t.Fatalf("Clip differs between calls:\n%+v\n%+v", a, b)
	}
	for i := range a.Corners {
		if math.Float64bits(a.Corners[i].RA) != math.Float64bits(b.Corners[i].RA) ||
			math.Float64bits(a.Corners[i].Dec) != math.Float64bits(b.Corners[i].Dec) {
			t.Errorf("corner %d not bit-identical", i)
		}
	}
}

func TestClip_FailedCorners(t *testing.T) {
	vp := screen.Viewport{Width: 200, Height: 200}
	proj := DiskProjector{Viewport: vp}

	// start inside the disk, end in the viewport corner off the disk
	start := screen.Pixel{X: 100, Y: 100}
	anchor, _ := proj.Project(start)

	r := Clip(start, screen.Pixel{X: 200, Y: 200}, proj, nil)
	if r.Corners[BottomRight] != anchor {
		t.Errorf("off-disk corner = %v, want anchor %v", r.Corners[BottomRight], anchor)
	}
	if r.Corners[TopLeft] != anchor {
		t.Errorf("TL = %v, want anchor %v", r.Corners[TopLeft], anchor)
	}

	// with the anchor off the disk too, failures fall back to (0, 0) and
	// no clipping is attempted
	r = Clip(screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 5, Y: 5}, proj, NewLimit(1, 1))
	for i, c := range r.Corners {
		if c != (astro.Equatorial{}) {
			t.Errorf("corner %d = %v, want (0, 0)", i, c)
		}
	}
	if r.Clipped {
		t.Error("region clipped without an anchor")
	}
}

func TestClip_NonFiniteProjection(t *testing.T) {
	proj := ProjectorFunc(func(p screen.Pixel) (astro.Equatorial, bool) {
		if p.X > 0 {
			return astro.Equatorial{RA: math.NaN(), Dec: 0}, true
		}
		return astro.Equatorial{RA: 20, Dec: 10}, true
	})

	r := Clip(screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 1, Y: 1}, proj, NewLimit(1, 1))
	for i, c := range r.Corners {
		if c != (astro.Equatorial{RA: 20, Dec: 10}) {
			t.Errorf("corner %d = %v, want anchor", i, c)
		}
	}
}

func TestClip_NegativeRAConvention(t *testing.T) {
	proj := fixedProjector{
		{X: 0, Y: 0}: {RA: 0.5, Dec: 0},
		{X: 1, Y: 0}: {RA: -1, Dec: 0},  // inside the window
		{X: 1, Y: 1}: {RA: -10, Dec: 0}, // clamped to 358.5
		{X: 0, Y: 1}: {RA: 0.5, Dec: 0},
	}

	r := Clip(screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 1, Y: 1}, proj, NewLimit(2, 5))

	if got := r.Corners[TopRight].RA; math.Abs(got+1) > 1e-9 {
		t.Errorf("RA -1 returned as %v, want -1", got)
	}
	if got := r.Corners[BottomRight].RA; math.Abs(got-(358.5-360)) > 1e-9 {
		t.Errorf("RA -10 returned as %v, want -1.5", got)
	}
	if !r.Clipped {
		t.Error("not clipped")
	}
}

func TestClip_PartialLimits(t *testing.T) {
	proj := linearProjector(0, 0, 100, 0, 1)
	start, end := screen.Pixel{X: 0, Y: 0}, screen.Pixel{X: 50, Y: 50}

	// nil limit: nothing is clipped
	if r := Clip(start, end, proj, nil); r.Clipped {
		t.Error("nil limit clipped")
	}

	dec := 5.0
	r := Clip(start, end, proj, &Limit{Dec: &dec})
	if !r.Clipped {
		t.Fatal("dec-only limit did not clip")
	}
	if got := r.Corners[TopRight].RA; math.Abs(got-150) > 1e-9 {
		t.Errorf("RA with no RA limit = %v, want 150", got)
	}
	if got := r.Corners[BottomLeft].Dec; got != -5 {
		t.Errorf("Dec = %v, want -5", got)
	}

	ra := 10.0
	r = Clip(start, end, proj, &Limit{RA: &ra})
	if got := r.Corners[BottomLeft].Dec; got != -50 {
		t.Errorf("Dec with no Dec limit = %v, want -50", got)
	}
	if got := r.Corners[TopRight].RA; math.Abs(got-110) > 1e-9 {
		t.Errorf("RA = %v, want 110", got)
	}

	// half-widths of 180° or more cover every RA
	wide := 180.0
	if r := Clip(start, end, proj, &Limit{RA: &wide}); r.Clipped {
		t.Error("180° RA limit clipped")
	}
}

func TestRegion_EqualAndBounds(t *testing.T) {
	a := Region{Corners: [4]astro.Equatorial{{RA: 359, Dec: 1}, {RA: 1, Dec: 1}, {RA: 1, Dec: -1}, {RA: 359, Dec: -1}}}
	b := a
	b.Rect = Rect{Max: screen.Pixel{X: 1, Y: 1}}

	if !a.Equal(b) {
		t.Error("regions differing only in Rect are not Equal")
	}
	b.Clipped = true
	if a.Equal(b) {
		t.Error("regions differing in Clipped are Equal")
	}

	bounds := a.Bounds()
	if !bounds.Wraps() || bounds.RAMin != 359 || bounds.RAMax != 1 {
		t.Errorf("Bounds() = %+v, want RA 359..1", bounds)
	}
	if bounds.DecMin != -1 || bounds.DecMax != 1 {
		t.Errorf("Bounds() dec = %v..%v", bounds.DecMin, bounds.DecMax)
	}
}

func TestRectFrom(t *testing.T) {
	r := RectFrom(screen.Pixel{X: 30, Y: 5}, screen.Pixel{X: 10, Y: 25})
	if r.Width() != 20 || r.Height() != 20 {
		t.Errorf("size = %v×%v", r.Width(), r.Height())
	}
	c := r.Corners()
	if c[TopLeft] != (screen.Pixel{X: 10, Y: 5}) || c[BottomRight] != (screen.Pixel{X: 30, Y: 25}) {
		t.Errorf("Corners() = %v", c)
	}
}

func TestClip_AllocationFree(t *testing.T) {
	var proj Projector = DiskProjector{Viewport: screen.Viewport{Width: 400, Height: 400}}
	limit := NewLimit(2, 1)

	allocs := testing.AllocsPerRun(100, func() {
		_ = Clip(screen.Pixel{X: 150, Y: 150}, screen.Pixel{X: 250, Y: 260}, proj, limit)
	})
	if allocs > 0 {
		t.Errorf("Clip allocated %v times per call", allocs)
	}
}

func BenchmarkClip(b *testing.B) {
	var proj Projector = DiskProjector{Viewport: screen.Viewport{Width: 1920, Height: 1080}}
	limit := NewLimit(2, 1)
	for i := 0; i < b.N; i++ {
		_ = Clip(screen.Pixel{X: 900, Y: 500}, screen.Pixel{X: 1000, Y: 560}, proj, limit)
	}
}
