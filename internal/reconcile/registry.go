package reconcile

import (
	"strings"

	"PopulationSnapshot/internal/domain"
)

// Registry is the set of real countries (no regional aggregates), indexed by alpha-3 code.
type Registry struct {
	names map[string]string
}

// Contains reports whether iso3 is a registered country.
func (r Registry) Contains(iso3 string) bool {
	_, ok := r.names[iso3]
	return ok
}

// Name returns the display name; it may be empty.
func (r Registry) Name(iso3 string) string {
	return r.names[iso3]
}

// Len returns the number of registered countries.
func (r Registry) Len() int {
	return len(r.names)
}

// BuildRegistry keeps entries with a three-character id outside the aggregates region.
func (e *Engine) BuildRegistry(countries []domain.RawCountry) Registry {
	reg := Registry{names: make(map[string]string, len(countries))}
	for _, country := range countries {
		iso3 := normalizeISO3(country.ID)
		if len(iso3) != 3 {
			e.skip(ComponentRegistry, "invalid_id", "id", country.ID)
			continue
		}
		if strings.TrimSpace(country.Region.Value) == domain.RegionAggregates {
			e.skip(ComponentRegistry, "aggregate", "iso3", iso3)
			continue
		}
		reg.names[iso3] = strings.TrimSpace(country.Name)
	}

	e.debug("registry built", "countries", reg.Len())
	return reg
}

func normalizeISO3(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
