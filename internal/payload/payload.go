// Package payload builds the retrieve request sent for a committed selection
// and posts it to the log collaborator.
package payload

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/litescript/ls-skyselect/internal/astro"
)

// CornerCount is the number of coordinations a payload carries.
const CornerCount = 4

// ErrInvalidPayload reports a payload the log server will not accept.
var ErrInvalidPayload = errors.New("invalid payload")

// TelescopeFilters names one telescope, where its images live, and the
// filters chosen for it.
type TelescopeFilters struct {
	Telescope string   `json:"telescope"`
	DB        string   `json:"db,omitempty"`
	Column    string   `json:"column,omitempty"`
	Filters   []string `json:"filters"`
}

// Payload is the retrieve request for a committed selection.
type Payload struct {
	TelescopesAndFilters []TelescopeFilters `json:"telescopesAndFilters"`
	Coordinations        []astro.Equatorial `json:"coordinations"`
}

// Build assembles a payload from telescope label to chosen filter keys and
// the selection corners. Telescopes appear in catalog order; unknown
// telescopes or filters are an error.
func Build(selected map[string][]string, corners []astro.Equatorial) (Payload, error) {
	p := Payload{
		TelescopesAndFilters: []TelescopeFilters{},
		Coordinations:        append([]astro.Equatorial{}, corners...),
	}

	seen := 0
	for _, t := range catalog {
		filters, ok := lookupSelected(selected, t)
		if !ok {
			continue
		}
		seen++

		chosen := []string{}
		for _, f := range filters {
			if !t.HasFilter(f) {
				return Payload{}, fmt.Errorf("telescope %s has no filter %q: %w", t.Label, f, ErrInvalidPayload)
			}
			chosen = append(chosen, f)
		}

		p.TelescopesAndFilters = append(p.TelescopesAndFilters, TelescopeFilters{
			Telescope: t.Label,
			DB:        t.DB,
			Column:    t.Column,
			Filters:   chosen,
		})
	}

	if seen != len(selected) {
		for name := range selected {
			if _, ok := LookupTelescope(name); !ok {
				return Payload{}, fmt.Errorf("unknown telescope %q: %w", name, ErrInvalidPayload)
			}
		}
		return Payload{}, fmt.Errorf("telescope selected twice: %w", ErrInvalidPayload)
	}
	return p, nil
}

func lookupSelected(selected map[string][]string, t Telescope) ([]string, bool) {
	for name, filters := range selected {
		if strings.EqualFold(name, t.Label) || strings.EqualFold(name, t.Key) {
			return filters, true
		}
	}
	return nil, false
}

// Validate checks that p carries exactly four finite corners with Dec in
// [-90, 90]. RA may be negative, since the clipper keeps a negative input
// convention, but must lie in (-360, 360).
func (p Payload) Validate() error {
	if len(p.Coordinations) != CornerCount {
		return fmt.Errorf("got %d coordinations, want %d: %w", len(p.Coordinations), CornerCount, ErrInvalidPayload)
	}
	for i, c := range p.Coordinations {
		if math.IsNaN(c.RA) || math.IsNaN(c.Dec) || c.RA <= -360 || c.RA >= 360 || c.Dec < -90 || c.Dec > 90 {
			return fmt.Errorf("coordination %d (%v, %v) out of range: %w", i, c.RA, c.Dec, ErrInvalidPayload)
		}
	}
	for i, tf := range p.TelescopesAndFilters {
		if strings.TrimSpace(tf.Telescope) == "" {
			return fmt.Errorf("telescopesAndFilters[%d] has no telescope: %w", i, ErrInvalidPayload)
		}
	}
	return nil
}

// Telescopes returns the telescope labels in p.
func (p Payload) Telescopes() []string {
	names := make([]string, len(p.TelescopesAndFilters))
	for i, tf := range p.TelescopesAndFilters {
		names[i] = tf.Telescope
	}
	return names
}
