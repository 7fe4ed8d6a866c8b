// Package footprint holds the sky coverage of the supported surveys and
// intersects it with selections.
package footprint

import (
	"math"
	"sort"
	"strings"
)

// Interval is a closed range in degrees.
type Interval struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Len returns the interval length, zero when empty.
func (i Interval) Len() float64 {
	return math.Max(0, i.Max-i.Min)
}

func (i Interval) overlap(o Interval) float64 {
	return math.Max(0, math.Min(i.Max, o.Max)-math.Max(i.Min, o.Min))
}

// Range is a survey's RA/Dec coverage box.
type Range struct {
	RA  Interval `json:"ra"`
	Dec Interval `json:"dec"`
}

// Area returns the box area in square degrees of RA×Dec.
func (r Range) Area() float64 {
	return r.RA.Len() * r.Dec.Len()
}

// Contains reports whether (ra, dec) lies inside the box.
func (r Range) Contains(ra, dec float64) bool {
	return ra >= r.RA.Min && ra <= r.RA.Max && dec >= r.Dec.Min && dec <= r.Dec.Max
}

var ranges = map[string]Range{
	"euclid": {
		RA:  Interval{Min: 50.20331821281007, Max: 277.8065766313761},
		Dec: Interval{Min: -51.76584951599634, Max: 69.26502582362194},
	},
	"desi": {
		RA:  Interval{Min: 0, Max: 360},
		Dec: Interval{Min: -89.875, Max: 35.875},
	},
	"twomass": {
		RA:  Interval{Min: 0.000008, Max: 359.999997},
		Dec: Interval{Min: -89.941531, Max: 89.957809},
	},
	"wise": {
		RA:  Interval{Min: 0.44150562027, Max: 359.463365090262},
		Dec: Interval{Min: -89.20642421106, Max: 89.206488975914},
	},
	"all": {
		RA:  Interval{Min: 0, Max: 359.999997},
		Dec: Interval{Min: -89.9415, Max: 89.9578},
	},
}

// Names returns the known survey keys, sorted.
func Names() []string {
	names := make([]string, 0, len(ranges))
	for k := range ranges {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the coverage of a survey. Names are case-insensitive and
// "2MASS" is accepted for twomass.
func Lookup(name string) (Range, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "2mass" {
		key = "twomass"
	}
	r, ok := ranges[key]
	return r, ok
}

// Contains reports whether (ra, dec) is inside the named survey's coverage.
// Unknown surveys contain nothing.
func Contains(name string, ra, dec float64) bool {
	r, ok := Lookup(name)
	return ok && r.Contains(ra, dec)
}

// Bounds is the RA/Dec box of a selection. RAMin > RAMax means the box
// crosses RA 0°.
type Bounds struct {
	RAMin  float64 `json:"ra_min"`
	RAMax  float64 `json:"ra_max"`
	DecMin float64 `json:"dec_min"`
	DecMax float64 `json:"dec_max"`
}

// BoundsOf returns the smallest box holding the given RAs (in [0, 360)) and
// Decs. RAs spread over more than 180° are taken to straddle RA 0°.
func BoundsOf(ras, decs []float64) Bounds {
	b := Bounds{
		RAMin: math.Inf(1), RAMax: math.Inf(-1),
		DecMin: math.Inf(1), DecMax: math.Inf(-1),
	}
	if len(ras) == 0 || len(decs) == 0 {
		return Bounds{}
	}
	for _, ra := range ras {
		b.RAMin = math.Min(b.RAMin, ra)
		b.RAMax = math.Max(b.RAMax, ra)
	}
	for _, dec := range decs {
		b.DecMin = math.Min(b.DecMin, dec)
		b.DecMax = math.Max(b.DecMax, dec)
	}

	if b.RAMax-b.RAMin > 180 {
		lowMax, highMin := math.Inf(-1), math.Inf(1)
		for _, ra := range ras {
			if ra < 180 {
				lowMax = math.Max(lowMax, ra)
			} else {
				highMin = math.Min(highMin, ra)
			}
		}
		b.RAMin, b.RAMax = highMin, lowMax
	}
	return b
}

// Wraps reports whether the box crosses RA 0°.
func (b Bounds) Wraps() bool {
	return b.RAMin > b.RAMax
}

// RASpans splits the RA extent into non-wrapping intervals.
func (b Bounds) RASpans() []Interval {
	if b.Wraps() {
		return []Interval{{Min: b.RAMin, Max: 360}, {Min: 0, Max: b.RAMax}}
	}
	return []Interval{{Min: b.RAMin, Max: b.RAMax}}
}

// Area returns the box area in square degrees of RA×Dec.
func (b Bounds) Area() float64 {
	var ra float64
	for _, s := range b.RASpans() {
		ra += s.Len()
	}
	return ra * math.Max(0, b.DecMax-b.DecMin)
}

func (b Bounds) overlapArea(r Range) float64 {
	var ra float64
	for _, s := range b.RASpans() {
		ra += s.overlap(r.RA)
	}
	dec := Interval{Min: b.DecMin, Max: b.DecMax}.overlap(r.Dec)
	return ra * dec
}

// Intersection is the overlap of a selection with one survey.
type Intersection struct {
	HasIntersection bool    `json:"hasIntersection"`
	Area            float64 `json:"intersectionArea"`
}

// Intersect returns the overlap of sel with the named survey.
func Intersect(sel Bounds, name string) Intersection {
	r, ok := Lookup(name)
	if !ok {
		return Intersection{}
	}
	area := sel.overlapArea(r)
	return Intersection{HasIntersection: area > 0, Area: area}
}

// Overlap is how much of a selection one survey covers.
type Overlap struct {
	HasOverlap bool    `json:"hasOverlap"`
	Coverage   float64 `json:"coverage"` // percent of the selection
}

// OverlapInfo reports coverage of sel for each named survey, keyed by the
// name as given.
func OverlapInfo(sel Bounds, names []string) map[string]Overlap {
	out := make(map[string]Overlap, len(names))
	selArea := sel.Area()

	for _, name := range names {
		r, ok := Lookup(name)
		if !ok {
			out[name] = Overlap{}
			continue
		}
		area := sel.overlapArea(r)
		var coverage float64
		if selArea > 0 {
			coverage = area / selArea * 100
		}
		out[name] = Overlap{HasOverlap: area > 0, Coverage: coverage}
	}
	return out
}

// MultiOverlap intersects the coverage of every known survey in names.
// ok is false with fewer than two known surveys; overlap is false when the
// intersection is empty.
func MultiOverlap(names []string) (r Range, overlap bool, ok bool) {
	r = Range{
		RA:  Interval{Min: math.Inf(-1), Max: math.Inf(1)},
		Dec: Interval{Min: math.Inf(-1), Max: math.Inf(1)},
	}

	var known int
	for _, name := range names {
		tr, found := Lookup(name)
		if !found {
			continue
		}
		known++
		r.RA.Min = math.Max(r.RA.Min, tr.RA.Min)
		r.RA.Max = math.Min(r.RA.Max, tr.RA.Max)
		r.Dec.Min = math.Max(r.Dec.Min, tr.Dec.Min)
		r.Dec.Max = math.Min(r.Dec.Max, tr.Dec.Max)
	}
	if known < 2 {
		return Range{}, false, false
	}
	if r.RA.Min >= r.RA.Max || r.Dec.Min >= r.Dec.Max {
		return Range{}, false, true
	}
	return r, true, true
}

// Recommendation is the suggested observation area for a set of surveys.
type Recommendation struct {
	Kind       string   `json:"type"` // "overlap" or "single"
	Telescopes []string `json:"telescopes"`
	Bounds     Range    `json:"bounds"`
	Area       float64  `json:"area"`
}

// Optimal recommends the common coverage of the surveys, or the single
// largest survey when they share none.
func Optimal(names []string) Recommendation {
	if r, overlap, ok := MultiOverlap(names); ok && overlap {
		return Recommendation{
			Kind:       "overlap",
			Telescopes: append([]string(nil), names...),
			Bounds:     r,
			Area:       r.Area(),
		}
	}

	rec := Recommendation{Kind: "single"}
	for _, name := range names {
		r, ok := Lookup(name)
		if !ok {
			continue
		}
		if a := r.Area(); a > rec.Area {
			rec.Area = a
			rec.Bounds = r
			rec.Telescopes = []string{name}
		}
	}
	return rec
}
