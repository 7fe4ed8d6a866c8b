package payload

import "strings"

// Telescope describes a survey the retrieve service can query.
type Telescope struct {
	Key     string // footprint key
	Label   string // payload name
	DB      string
	Column  string
	Filters []string
}

// HasFilter reports whether key is one of the telescope's filters.
func (t Telescope) HasFilter(key string) bool {
	for _, f := range t.Filters {
		if f == key {
			return true
		}
	}
	return false
}

var catalog = []Telescope{
	{
		Key:     "twomass",
		Label:   "2MASS",
		DB:      "twomass_allsky_images",
		Column:  "filter",
		Filters: []string{"h", "j", "k"},
	},
	{
		Key:     "desi",
		Label:   "DESI",
		DB:      "survey_bricks_dr10_south_external",
		Column:  "band",
		Filters: []string{"W1", "W2", "W3", "W4", "g", "i", "r", "z"},
	},
	{
		Key:    "euclid",
		Label:  "Euclid",
		DB:     "sedm_mosaic_product",
		Column: "filter_name",
		Filters: []string{
			"DECAM_g", "DECAM_i", "DECAM_r", "DECAM_z",
			"HSC_g", "HSC_z",
			"MEGACAM_r", "MEGACAM_u",
			"NIR_H", "NIR_J", "NIR_Y",
			"PANSTARRS_i",
		},
	},
	{
		Key:     "wise",
		Label:   "WISE",
		DB:      "wise_wise_allwise_p3am_cdd",
		Column:  "band",
		Filters: []string{"1", "2", "3", "4"},
	},
}

// Telescopes returns the supported telescopes in display order.
func Telescopes() []Telescope {
	out := make([]Telescope, len(catalog))
	for i, t := range catalog {
		t.Filters = append([]string(nil), t.Filters...)
		out[i] = t
	}
	return out
}

// LookupTelescope finds a telescope by label or key, ignoring case.
func LookupTelescope(name string) (Telescope, bool) {
	for _, t := range catalog {
		if strings.EqualFold(name, t.Label) || strings.EqualFold(name, t.Key) {
			return t, true
		}
	}
	return Telescope{}, false
}
