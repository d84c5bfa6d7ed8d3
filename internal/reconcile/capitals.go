package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"PopulationSnapshot/internal/domain"
)

// ResolveCapitals extracts capital names and coordinates by alpha-3 code.
// Coordinates are kept only when both latitude and longitude parse.
func (e *Engine) ResolveCapitals(rows []domain.RawCapital) map[string]domain.CapitalInfo {
	capitals := make(map[string]domain.CapitalInfo, len(rows))
	for _, row := range rows {
		iso3 := normalizeISO3(row.CCA3)
		if len(iso3) != 3 {
			e.skip(ComponentCapitals, "invalid_id", "cca3", row.CCA3)
			continue
		}

		info := domain.CapitalInfo{Name: capitalName(row.Capital)}
		if coords, ok := parseLatLng(row.CapitalInfo.LatLng); ok {
			info.Coordinates = domain.Some(coords)
		} else if len(bytes.TrimSpace(row.CapitalInfo.LatLng)) > 0 {
			e.skip(ComponentCapitals, "invalid_coordinates", "iso3", iso3)
		}
		capitals[iso3] = info
	}

	e.debug("capitals resolved", "countries", len(capitals))
	return capitals
}

// capitalName prefers the first element of a list and falls back to a plain string.
func capitalName(raw json.RawMessage) string {
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 || list[0] == nil {
			return ""
		}
		if s, ok := list[0].(string); ok {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(fmt.Sprint(list[0]))
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return strings.TrimSpace(name)
	}
	return ""
}

func parseLatLng(raw json.RawMessage) (domain.LatLng, bool) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) < 2 {
		return domain.LatLng{}, false
	}
	lat, ok := parseCoordinate(pair[0])
	if !ok {
		return domain.LatLng{}, false
	}
	lng, ok := parseCoordinate(pair[1])
	if !ok {
		return domain.LatLng{}, false
	}
	return domain.LatLng{Lat: lat, Lng: lng}, true
}

func parseCoordinate(raw json.RawMessage) (float64, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
