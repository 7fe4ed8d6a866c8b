package ui

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/footprint"
)

// starLabelDeg is how close the cursor must be to a star to name it.
const starLabelDeg = 1.5

// readoutKey identifies one cursor cell under one camera.
type readoutKey struct {
	mode            ViewMode
	x, y            int
	w, h            int
	yaw, pitch, fov float64
}

// readout describes the sky under the cursor.
type readout struct {
	ok      bool
	coord   astro.Equatorial
	line    string
	covered []string // footprints containing the point
}

// readoutCache memoizes cursor readouts, which cast a ray, search the star
// list and test every footprint.
type readoutCache struct {
	cache *lru.Cache
	stars astro.StarCatalog
	hits  int
	miss  int
}

func newReadoutCache(size int, stars astro.StarCatalog) *readoutCache {
	c, err := lru.New(size)
	if err != nil {
		// only fails for size <= 0
		c, _ = lru.New(1)
	}
	return &readoutCache{cache: c, stars: stars}
}

func (rc *readoutCache) key(v skyView, x, y int, yaw, pitch, fov float64) readoutKey {
	k := readoutKey{mode: v.mode, x: x, y: y, w: v.w, h: v.h}
	if v.mode == ModeSky {
		k.yaw, k.pitch, k.fov = yaw, pitch, fov
	}
	return k
}

// lookup returns the readout for cell (x, y), computing it on a miss.
func (rc *readoutCache) lookup(v skyView, x, y int, yaw, pitch, fov float64) readout {
	k := rc.key(v, x, y, yaw, pitch, fov)
	if r, ok := rc.cache.Get(k); ok {
		rc.hits++
		return r.(readout)
	}
	rc.miss++

	r := rc.compute(v, x, y)
	rc.cache.Add(k, r)
	return r
}

func (rc *readoutCache) compute(v skyView, x, y int) readout {
	e, ok := v.projector().Project(v.cellPixel(x, y))
	if !ok {
		return readout{line: "off sky"}
	}

	ecl := astro.EquatorialToEcliptic(e)
	line := fmt.Sprintf("%s  (%s)  λ %.2f° β %+.2f°",
		astro.FormatEquatorial(e), astro.FormatDegrees(e), ecl.Lon, ecl.Lat)

	if s, sep, ok := rc.stars.Nearest(e); ok && sep <= starLabelDeg {
		line += fmt.Sprintf("  near %s (%.1f°)", s.Name, sep)
	}

	var covered []string
	for _, name := range footprint.Names() {
		if name == "all" {
			continue
		}
		if footprint.Contains(name, e.RA, e.Dec) {
			covered = append(covered, name)
		}
	}

	return readout{ok: true, coord: e, line: line, covered: covered}
}
