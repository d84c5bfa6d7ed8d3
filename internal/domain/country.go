package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LeaderSourceWikidata tags leader data resolved from the Wikidata knowledge base.
const LeaderSourceWikidata = "wikidata"

// CountryCode bundles the three identifiers a country is known by across sources.
type CountryCode struct {
	ISO3 string
	ISO2 Optional[string]
	M49  string
}

// PopulationObservation is the single surviving population value for a country.
type PopulationObservation struct {
	ISO3       string
	Name       string
	Population int64
	Year       Year
}

// Year keeps the observation year as an integer when it parses, and the raw source value otherwise.
type Year struct {
	value  int
	raw    json.RawMessage
	parsed bool
}

// YearOf builds an already-parsed year.
func YearOf(v int) Year {
	return Year{value: v, parsed: true}
}

// ParseYear interprets a raw JSON year that may be a number, a numeric string or anything else.
func ParseYear(raw json.RawMessage) Year {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Year{}
	}

	var text string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return Year{raw: trimmed}
		}
		if v, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return YearOf(v)
		}
		return Year{raw: trimmed}
	}

	if v, err := strconv.Atoi(string(trimmed)); err == nil {
		return YearOf(v)
	}
	if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return YearOf(int(f))
	}
	return Year{raw: trimmed}
}

// Int returns the numeric year when the source value was parseable.
func (y Year) Int() (int, bool) {
	return y.value, y.parsed
}

// MarshalJSON writes the integer year, the untouched source value, or null.
func (y Year) MarshalJSON() ([]byte, error) {
	if y.parsed {
		return []byte(strconv.Itoa(y.value)), nil
	}
	if len(y.raw) == 0 {
		return []byte("null"), nil
	}
	return y.raw, nil
}

// String renders the year as text: the number when parsed, the unquoted source string otherwise,
// and "" when the source had no year.
func (y Year) String() string {
	if y.parsed {
		return strconv.Itoa(y.value)
	}
	var text string
	if err := json.Unmarshal(y.raw, &text); err == nil {
		return text
	}
	return string(y.raw)
}

// LatLng is a capital's coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// CapitalInfo describes a country's capital. Coordinates are either both known or absent.
type CapitalInfo struct {
	Name        string
	Coordinates Optional[LatLng]
}

// Role is a leadership office.
type Role string

const (
	RoleHeadOfState      Role = "head_of_state"
	RoleHeadOfGovernment Role = "head_of_government"
)

// LeaderCandidate is one office holder offered by the knowledge base for a country.
type LeaderCandidate struct {
	Role     Role
	Name     string
	ImageURL string
}

// Leader is the primary leader chosen for display.
type Leader struct {
	Name     string
	Role     Role
	ImageURL string
	Source   string
}

// CountryRecord is the fully reconciled entry for one country.
type CountryRecord struct {
	M49        string
	ISO3       string
	Name       string
	Population int64
	Year       Year
	ISO2       Optional[string]
	FlagEmoji  Optional[string]
	Capital    Optional[CapitalInfo]
	Leader     Optional[Leader]
}

type countryRecordJSON struct {
	ISO3           string   `json:"iso3"`
	Name           string   `json:"name"`
	Population     int64    `json:"population"`
	Year           Year     `json:"year"`
	ISO2           string   `json:"iso2"`
	FlagEmoji      string   `json:"flagEmoji"`
	Capital        string   `json:"capital"`
	CapitalLat     *float64 `json:"capitalLat"`
	CapitalLng     *float64 `json:"capitalLng"`
	LeaderName     string   `json:"leaderName"`
	LeaderRole     string   `json:"leaderRole"`
	LeaderImageURL string   `json:"leaderImageUrl"`
	LeaderSource   string   `json:"leaderSource"`
}

// MarshalJSON flattens the record into the shape the map renderer reads.
// Absent text fields become empty strings and absent coordinates become null.
func (r CountryRecord) MarshalJSON() ([]byte, error) {
	out := countryRecordJSON{
		ISO3:       r.ISO3,
		Name:       r.Name,
		Population: r.Population,
		Year:       r.Year,
		ISO2:       r.ISO2.OrZero(),
		FlagEmoji:  r.FlagEmoji.OrZero(),
	}

	if capital, ok := r.Capital.Get(); ok {
		out.Capital = capital.Name
		if coords, ok := capital.Coordinates.Get(); ok {
			lat, lng := coords.Lat, coords.Lng
			out.CapitalLat = &lat
			out.CapitalLng = &lng
		}
	}

	if leader, ok := r.Leader.Get(); ok {
		out.LeaderName = leader.Name
		out.LeaderRole = string(leader.Role)
		out.LeaderImageURL = leader.ImageURL
		out.LeaderSource = leader.Source
	}

	return marshalUnescaped(out)
}

// marshalUnescaped encodes v without HTML escaping so names keep their original characters.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// GovernmentForms is the set of lower-cased government form labels recorded for a country.
type GovernmentForms map[string]struct{}

// Add records a label, ignoring blanks.
func (g GovernmentForms) Add(label string) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return
	}
	g[label] = struct{}{}
}
