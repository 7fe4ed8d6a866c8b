package astro

import (
	"fmt"
	"math"
)

// FormatEquatorial renders coordinates in the usual sexagesimal form:
//
//	05h 55m 10.31s +07° 24' 25.4"
//
// Components are truncated, not rounded, so 59.999s never shows as 60.
func FormatEquatorial(e Equatorial) string {
	hours := NormalizeRA(e.RA) / 15
	raH := math.Floor(hours)
	raM := math.Floor((hours - raH) * 60)
	raS := ((hours-raH)*60 - raM) * 60

	sign := '+'
	if e.Dec < 0 {
		sign = '-'
	}
	decAbs := math.Abs(e.Dec)
	decD := math.Floor(decAbs)
	decM := math.Floor((decAbs - decD) * 60)
	decS := ((decAbs-decD)*60 - decM) * 60

	return fmt.Sprintf("%02.0fh %02.0fm %05.2fs %c%02.0f° %02.0f' %04.1f\"",
		raH, raM, truncate(raS, 2), sign, decD, decM, truncate(decS, 1))
}

// FormatDegrees renders coordinates as plain decimal degrees.
func FormatDegrees(e Equatorial) string {
	return fmt.Sprintf("RA %7.3f° Dec %+7.3f°", e.RA, e.Dec)
}

// truncate drops digits beyond the given decimal places so %f does not round up.
func truncate(f float64, places int) float64 {
	p := math.Pow10(places)
	return math.Floor(f*p) / p
}
