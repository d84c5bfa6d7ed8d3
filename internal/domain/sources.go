package domain

import (
	"encoding/json"
	"strings"
)

// RegionAggregates marks statistical groupings ("World", "OECD members") in the country list.
const RegionAggregates = "Aggregates"

// RawCountry is one entry of the World Bank country list.
type RawCountry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region struct {
		Value string `json:"value"`
	} `json:"region"`
}

// RawPopulation is one row of the World Bank population indicator.
type RawPopulation struct {
	CountryISO3 string          `json:"countryiso3code"`
	Value       json.RawMessage `json:"value"`
	Date        json.RawMessage `json:"date"`
	Country     struct {
		Value string `json:"value"`
	} `json:"country"`
}

// RawCapital is one restcountries entry. Capital may be a list or a string.
type RawCapital struct {
	CCA3        string          `json:"cca3"`
	Capital     json.RawMessage `json:"capital"`
	CapitalInfo struct {
		LatLng json.RawMessage `json:"latlng"`
	} `json:"capitalInfo"`
}

// FlagEmojis maps an alpha-2 code to its flag emoji.
type FlagEmojis map[string]string

// Binding is one SPARQL result row with every variable flattened to its string value.
type Binding map[string]string

// Get returns the trimmed value of a variable, or "" when the row does not bind it.
func (b Binding) Get(name string) string {
	return strings.TrimSpace(b[name])
}
