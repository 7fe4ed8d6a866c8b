package wcs

import (
	"errors"
	"math"
	"testing"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/screen"
)

func testTransform() Transform {
	return Transform{
		CRPix1: 512, CRPix2: 512,
		CRVal1: 150, CRVal2: 30,
		CD1_1: -1e-3, CD1_2: 2e-5,
		CD2_1: 1e-5, CD2_2: 1e-3,
		CType1: "RA---TAN", CType2: "DEC--TAN",
	}
}

func raDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func TestPixelToWorld_TangentPoint(t *testing.T) {
	tests := []Transform{DefaultTransform(), testTransform(), {CRPix1: 10, CRPix2: 20, CRVal1: -5, CRVal2: -89, CD1_1: 1, CD2_2: 1}}

	for _, tr := range tests {
		got := tr.PixelToWorld(screen.Pixel{X: tr.CRPix1, Y: tr.CRPix2})
		want := astro.Equatorial{RA: astro.NormalizeRA(tr.CRVal1), Dec: tr.CRVal2}
		if got != want {
			t.Errorf("PixelToWorld(CRPIX) = %v, want %v", got, want)
		}
		if math.IsNaN(got.RA) || math.IsNaN(got.Dec) {
			t.Errorf("PixelToWorld(CRPIX) produced NaN")
		}

		// the limit approaching the tangent point is continuous
		near := tr.PixelToWorld(screen.Pixel{X: tr.CRPix1 + 1e-6, Y: tr.CRPix2 - 1e-6})
		if raDiff(near.RA, want.RA) > 1e-3 || math.Abs(near.Dec-want.Dec) > 1e-3 {
			t.Errorf("PixelToWorld near CRPIX = %v, want ≈ %v", near, want)
		}
	}
}

func TestPixelToWorld_Default(t *testing.T) {
	tr := DefaultTransform()

	// RA increases to the left with a negative CD1_1
	w := tr.PixelToWorld(screen.Pixel{X: 502, Y: 512})
	if math.Abs(w.RA-0.001) > 1e-9 || math.Abs(w.Dec) > 1e-12 {
		t.Errorf("PixelToWorld(502, 512) = %v, want (0.001, 0)", w)
	}

	w = tr.PixelToWorld(screen.Pixel{X: 522, Y: 512})
	if math.Abs(w.RA-359.999) > 1e-9 {
		t.Errorf("PixelToWorld(522, 512).RA = %v, want 359.999", w.RA)
	}

	w = tr.PixelToWorld(screen.Pixel{X: 512, Y: 612})
	if math.Abs(w.Dec-0.01) > 1e-9 {
		t.Errorf("PixelToWorld(512, 612).Dec = %v, want 0.01", w.Dec)
	}
}

func TestRoundTrip_PixelWorldPixel(t *testing.T) {
	tr := testTransform()

	for x := 0.0; x <= 1024; x += 64 {
		for y := 0.0; y <= 1024; y += 64 {
			p := screen.Pixel{X: x, Y: y}
			w := tr.PixelToWorld(p)
			if !w.Valid() {
				t.Fatalf("PixelToWorld(%v) = %v invalid", p, w)
			}
			back, err := tr.WorldToPixel(w)
			if err != nil {
				t.Fatalf("WorldToPixel(%v): %v", w, err)
			}
			if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
				t.Errorf("round trip %v -> %v -> %v", p, w, back)
			}
		}
	}
}

func TestRoundTrip_WorldPixelWorld(t *testing.T) {
	tr := testTransform()

	for ra := 140.0; ra <= 160; ra += 2.5 {
		for dec := 20.0; dec <= 40; dec += 2.5 {
			w := astro.Equatorial{RA: ra, Dec: dec}
			p, err := tr.WorldToPixel(w)
			if err != nil {
				t.Fatalf("WorldToPixel(%v): %v", w, err)
			}
			got := tr.PixelToWorld(p)
			if raDiff(got.RA, w.RA) > 1e-6 || math.Abs(got.Dec-w.Dec) > 1e-6 {
				t.Errorf("round trip %v -> %v -> %v", w, p, got)
			}
		}
	}
}

func TestRoundTrip_AcrossRAZero(t *testing.T) {
	tr := DefaultTransform()
	tr.CD1_1, tr.CD2_2 = -0.01, 0.01

	for _, w := range []astro.Equatorial{{RA: 359.5, Dec: 1}, {RA: 0.5, Dec: -1}, {RA: 0, Dec: 0}} {
		p, err := tr.WorldToPixel(w)
		if err != nil {
			t.Fatalf("WorldToPixel(%v): %v", w, err)
		}
		got := tr.PixelToWorld(p)
		if raDiff(got.RA, w.RA) > 1e-6 || math.Abs(got.Dec-w.Dec) > 1e-6 {
			t.Errorf("round trip %v -> %v", w, got)
		}
	}
}

func TestWorldToPixel_Degenerate(t *testing.T) {
	singular := DefaultTransform()
	singular.CD1_1, singular.CD1_2, singular.CD2_1, singular.CD2_2 = 1, 2, 2, 4

	tests := []struct {
		name string
		tr   Transform
		w    astro.Equatorial
	}{
		{"zero determinant", singular, astro.Equatorial{RA: 0, Dec: 0}},
		{"zero matrix", Transform{}, astro.Equatorial{RA: 0, Dec: 0}},
		{"antipode", DefaultTransform(), astro.Equatorial{RA: 180, Dec: 0}},
		{"beyond horizon", DefaultTransform(), astro.Equatorial{RA: 100, Dec: 0}},
		{"on horizon along RA", DefaultTransform(), astro.Equatorial{RA: 90, Dec: 0}},
		{"on horizon at pole", DefaultTransform(), astro.Equatorial{RA: 0, Dec: 90}},
		{"on horizon behind", DefaultTransform(), astro.Equatorial{RA: 270, Dec: 0}},
		{"opposite pole", Transform{CRVal2: 90, CD1_1: 1, CD2_2: 1}, astro.Equatorial{RA: 10, Dec: -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tr.WorldToPixel(tt.w)
			if !errors.Is(err, ErrDegenerateTransform) {
				t.Errorf("WorldToPixel(%v) error = %v, want ErrDegenerateTransform", tt.w, err)
			}
		})
	}
}

func TestWorldToPixel_InvalidInput(t *testing.T) {
	_, err := DefaultTransform().WorldToPixel(astro.Equatorial{RA: math.NaN(), Dec: 0})
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("error = %v, want ErrInvalidCoordinate", err)
	}
	if errors.Is(err, ErrDegenerateTransform) {
		t.Error("invalid input reported as degenerate transform")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultTransform().Validate(); err != nil {
		t.Errorf("DefaultTransform().Validate() = %v", err)
	}

	bad := []Transform{
		{},
		{CD1_1: 1, CD2_2: 1, CRVal1: math.NaN()},
		{CD1_1: math.Inf(1), CD2_2: 1},
		{CD1_1: 1, CD2_2: 1, CRVal2: 91},
	}
	for _, tr := range bad {
		if err := tr.Validate(); !errors.Is(err, ErrDegenerateTransform) {
			t.Errorf("Validate(%+v) = %v, want ErrDegenerateTransform", tr, err)
		}
	}
}

func TestSphereAdapter(t *testing.T) {
	tr := testTransform()
	p := screen.Pixel{X: 300, Y: 700}

	v := tr.PixelToSphere(p)
	if math.Abs(v.Norm()-1) > 1e-12 {
		t.Fatalf("|PixelToSphere| = %v", v.Norm())
	}

	// the sphere point agrees with the RA/Dec path
	w := tr.PixelToWorld(p)
	if want := astro.EquatorialToSphere(w); math.Abs(v.Sub(want).Norm()) > 1e-12 {
		t.Errorf("PixelToSphere = %v, want %v", v, want)
	}

	back, err := tr.SphereToPixel(v)
	if err != nil {
		t.Fatalf("SphereToPixel: %v", err)
	}
	if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
		t.Errorf("SphereToPixel = %v, want %v", back, p)
	}

	if _, err := tr.SphereToPixel(astro.Vec3{}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("SphereToPixel(0) error = %v, want ErrInvalidCoordinate", err)
	}
}

func TestScale(t *testing.T) {
	x, y := DefaultTransform().Scale()
	if math.Abs(x-1e-4) > 1e-15 || math.Abs(y-1e-4) > 1e-15 {
		t.Errorf("Scale() = %v, %v, want 1e-4", x, y)
	}
}
