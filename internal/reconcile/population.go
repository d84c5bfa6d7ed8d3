package reconcile

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"PopulationSnapshot/internal/domain"
)

// SelectPopulation keeps one usable observation per registered country.
// The upstream query returns only the most recent year, so a later row for the same country replaces an earlier one.
func (e *Engine) SelectPopulation(rows []domain.RawPopulation, reg Registry) map[string]domain.PopulationObservation {
	selected := make(map[string]domain.PopulationObservation)
	for _, row := range rows {
		iso3 := normalizeISO3(row.CountryISO3)
		if !reg.Contains(iso3) {
			e.skip(ComponentPopulation, "not_a_country", "iso3", iso3)
			continue
		}

		population, status := parsePopulation(row.Value)
		switch status {
		case populationNull:
			e.skip(ComponentPopulation, "null_value", "iso3", iso3)
			continue
		case populationInvalid:
			e.skip(ComponentPopulation, "invalid_value", "iso3", iso3, "value", string(row.Value))
			continue
		}
		if population <= 0 {
			e.skip(ComponentPopulation, "non_positive", "iso3", iso3, "value", population)
			continue
		}

		name := reg.Name(iso3)
		if name == "" {
			name = strings.TrimSpace(row.Country.Value)
		}

		selected[iso3] = domain.PopulationObservation{
			ISO3:       iso3,
			Name:       name,
			Population: population,
			Year:       domain.ParseYear(row.Date),
		}
	}

	e.debug("population selected", "countries", len(selected))
	return selected
}

type populationStatus int

const (
	populationOK populationStatus = iota
	populationNull
	populationInvalid
)

// parsePopulation truncates a numeric value (or numeric string) to an integer.
func parsePopulation(raw json.RawMessage) (int64, populationStatus) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, populationNull
	}

	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, populationInvalid
		}
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return 0, populationInvalid
		}
		return v, populationOK
	}

	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v, populationOK
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return 0, populationInvalid
	}
	return int64(f), populationOK
}
