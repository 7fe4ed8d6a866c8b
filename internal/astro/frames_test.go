package astro

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"3-4-5", Vec3{3, 4, 0}, 5},
		{"negative", Vec3{-3, -4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
		{"huge", Vec3{3e300, 4e300, 0}, 5e300},
		{"tiny", Vec3{3e-200, 0, 4e-200}, 5e-200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-12*tt.want {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Normalized(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want Vec3
	}{
		{"unit x", Vec3{5, 0, 0}, Vec3{1, 0, 0}},
		{"diagonal", Vec3{1, 1, 0}, Vec3{1 / math.Sqrt(2), 1 / math.Sqrt(2), 0}},
		{"zero", Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{"huge", Vec3{0, 1e308, 1e308}, Vec3{0, 1 / math.Sqrt(2), 1 / math.Sqrt(2)}},
		{"tiny", Vec3{0, -1e-310, 0}, Vec3{0, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Normalized(); !vecNear(got, tt.want, 1e-10) {
				t.Errorf("Normalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3CrossDot(t *testing.T) {
	x, y, z := Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}

	if got := x.Cross(y); !vecNear(got, z, 0) {
		t.Errorf("x × y = %v, want %v", got, z)
	}
	if got := y.Cross(x); !vecNear(got, z.Scale(-1), 0) {
		t.Errorf("y × x = %v, want -z", got)
	}
	if got := x.Dot(y); got != 0 {
		t.Errorf("x · y = %v, want 0", got)
	}
	if got := (Vec3{1, 2, 3}).Dot(Vec3{4, 5, 6}); got != 32 {
		t.Errorf("dot = %v, want 32", got)
	}
}

func TestVec3Rotate(t *testing.T) {
	y := Vec3{0, 1, 0}

	// Rotating +X by 90° about +Y lands on -Z (right-handed).
	got := Vec3{1, 0, 0}.Rotate(y, math.Pi/2)
	if !vecNear(got, Vec3{0, 0, -1}, 1e-12) {
		t.Errorf("Rotate(+X, +Y, 90°) = %v, want (0,0,-1)", got)
	}

	// Rotation preserves length.
	v := Vec3{0.3, -0.4, 1.2}
	r := v.Rotate(Vec3{1, 1, 1}.Normalized(), 1.234)
	if math.Abs(r.Norm()-v.Norm()) > 1e-12 {
		t.Errorf("|Rotate(v)| = %v, want %v", r.Norm(), v.Norm())
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if (Vec3{math.NaN(), 0, 0}).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if (Vec3{0, 0, math.Inf(-1)}).IsFinite() {
		t.Error("-Inf vector reported as finite")
	}
}

func TestEquatorialToEcliptic(t *testing.T) {
	tests := []struct {
		name string
		eq   Equatorial
		want Ecliptic
	}{
		{"vernal equinox", Equatorial{RA: 0, Dec: 0}, Ecliptic{Lon: 0, Lat: 0}},
		{"summer solstice", Equatorial{RA: 90, Dec: 23.4392911}, Ecliptic{Lon: 90, Lat: 0}},
		{"autumnal equinox", Equatorial{RA: 180, Dec: 0}, Ecliptic{Lon: 180, Lat: 0}},
		{"north ecliptic pole", Equatorial{RA: 270, Dec: 90 - 23.4392911}, Ecliptic{Lat: 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EquatorialToEcliptic(tt.eq)
			// asin is ill-conditioned near the pole
			if math.Abs(got.Lat-tt.want.Lat) > 1e-5 {
				t.Errorf("Lat = %v, want %v", got.Lat, tt.want.Lat)
			}
			// longitude is undefined at the pole
			if tt.want.Lat == 90 {
				return
			}
			dLon := math.Abs(got.Lon - tt.want.Lon)
			if dLon > 180 {
				dLon = 360 - dLon
			}
			if dLon > 1e-6 {
				t.Errorf("Lon = %v, want %v", got.Lon, tt.want.Lon)
			}
		})
	}
}

func TestFormatEquatorial(t *testing.T) {
	tests := []struct {
		e    Equatorial
		want string
	}{
		{Equatorial{RA: 0, Dec: 0}, `00h 00m 00.00s +00° 00' 00.0"`},
		{Equatorial{RA: 90, Dec: -30.5}, `06h 00m 00.00s -30° 30' 00.0"`},
		{Equatorial{RA: 187.5, Dec: 45.25}, `12h 30m 00.00s +45° 15' 00.0"`},
	}

	for _, tt := range tests {
		if got := FormatEquatorial(tt.e); got != tt.want {
			t.Errorf("FormatEquatorial(%v) = %q, want %q", tt.e, got, tt.want)
		}
	}
}
