package astro

import "sort"

// Star is a cataloged star with a J2000 position and visual magnitude.
type Star struct {
	Name  string
	Coord Equatorial
	Mag   float64 // lower is brighter
}

// Sphere returns the star's direction in the sphere convention.
func (s Star) Sphere() Vec3 {
	return EquatorialToSphere(s.Coord)
}

// StarCatalog holds a collection of stars for rendering.
type StarCatalog struct {
	Stars []Star
}

// DefaultStarCatalog returns the built-in bright-star list, brightest first.
func DefaultStarCatalog() StarCatalog {
	stars := make([]Star, len(brightStars))
	copy(stars, brightStars)
	return StarCatalog{Stars: stars}
}

// Brighter returns the stars with magnitude below limit, brightest first.
func (c StarCatalog) Brighter(limit float64) []Star {
	var out []Star
	for _, s := range c.Stars {
		if s.Mag < limit {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mag < out[j].Mag })
	return out
}

// Nearest returns the catalog star closest to e and its separation in degrees.
// ok is false for an empty catalog.
func (c StarCatalog) Nearest(e Equatorial) (star Star, sepDeg float64, ok bool) {
	for i, s := range c.Stars {
		d := AngularSeparation(e, s.Coord)
		if i == 0 || d < sepDeg {
			star, sepDeg, ok = s, d, true
		}
	}
	return star, sepDeg, ok
}

func star(name string, ra, dec, mag float64) Star {
	return Star{Name: name, Coord: Equatorial{RA: ra, Dec: dec}, Mag: mag}
}

// Yale Bright Star Catalog positions, J2000.
var brightStars = []Star{
	star("Sirius", 101.287, -16.716, -1.46),
	star("Canopus", 95.988, -52.696, -0.74),
	star("Arcturus", 213.915, 19.182, -0.05),
	star("Vega", 279.235, 38.784, 0.03),
	star("Capella", 79.172, 45.998, 0.08),
	star("Rigel", 78.634, -8.202, 0.13),
	star("Procyon", 114.826, 5.225, 0.34),
	star("Achernar", 24.429, -57.237, 0.46),
	star("Betelgeuse", 88.793, 7.407, 0.50),
	star("Hadar", 210.956, -60.373, 0.61),
	star("Altair", 297.696, 8.868, 0.76),
	star("Acrux", 186.650, -63.099, 0.76),
	star("Aldebaran", 68.980, 16.509, 0.85),
	star("Antares", 247.352, -26.432, 0.96),
	star("Spica", 201.298, -11.161, 0.97),
	star("Pollux", 116.329, 28.026, 1.14),
	star("Fomalhaut", 344.413, -29.622, 1.16),
	star("Deneb", 310.358, 45.280, 1.25),
	star("Mimosa", 191.930, -59.689, 1.25),
	star("Regulus", 152.093, 11.967, 1.35),
	star("Adhara", 104.656, -28.972, 1.50),
	star("Castor", 113.650, 31.889, 1.58),
	star("Shaula", 263.402, -37.104, 1.63),
	star("Bellatrix", 81.283, 6.350, 1.64),
	star("Elnath", 81.573, 28.608, 1.65),
	star("Alnilam", 84.053, -1.202, 1.69),
	star("Alnitak", 85.190, -1.943, 1.77),
	star("Alioth", 193.507, 55.960, 1.77),
	star("Dubhe", 165.932, 61.751, 1.79),
	star("Mirfak", 51.081, 49.861, 1.79),
	star("Alkaid", 206.885, 49.313, 1.86),
	star("Alhena", 99.428, 16.399, 1.93),
	star("Alphard", 141.897, -8.659, 2.00),
	star("Polaris", 37.954, 89.264, 2.02),
	star("Hamal", 31.793, 23.462, 2.00),
	star("Alpheratz", 2.097, 29.091, 2.06),
	star("Mirach", 17.433, 35.621, 2.05),
	star("Caph", 2.295, 59.150, 2.27),
	star("Diphda", 10.897, -17.987, 2.04),
	star("Alcyone", 56.871, 24.105, 2.87),
	star("Pherkad", 230.182, 71.834, 3.00),
	star("Yildun", 263.054, 86.586, 4.36),
}
