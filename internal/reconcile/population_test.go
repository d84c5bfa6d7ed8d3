package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PopulationSnapshot/internal/domain"
)

func rawCountry(id, region, name string) domain.RawCountry {
	var c domain.RawCountry
	c.ID = id
	c.Region.Value = region
	c.Name = name
	return c
}

func rawPopulation(iso3, value, date, name string) domain.RawPopulation {
	var p domain.RawPopulation
	p.CountryISO3 = iso3
	if value != "" {
		p.Value = json.RawMessage(value)
	}
	if date != "" {
		p.Date = json.RawMessage(date)
	}
	p.Country.Value = name
	return p
}

func TestBuildRegistryExcludesAggregates(t *testing.T) {
	t.Parallel()

	reg := New(Options{}).BuildRegistry([]domain.RawCountry{
		rawCountry(" fra ", "Europe & Central Asia", " France "),
		rawCountry("WLD", "Aggregates", "World"),
		rawCountry("EU", "Europe & Central Asia", "Too short"),
		rawCountry("OECD", "Aggregates ", "Too long"),
	})

	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Contains("FRA"))
	assert.Equal(t, "France", reg.Name("FRA"))
	assert.False(t, reg.Contains("WLD"))
}

func TestSelectPopulation(t *testing.T) {
	t.Parallel()

	obs := newRecordingObserver()
	engine := New(Options{Observer: obs})
	reg := engine.BuildRegistry([]domain.RawCountry{
		rawCountry("FRA", "Europe", "France"),
		rawCountry("TUV", "Oceania", ""),
		rawCountry("NUL", "Nowhere", "Null land"),
		rawCountry("ZER", "Nowhere", "Zero land"),
	})

	selected := engine.SelectPopulation([]domain.RawPopulation{
		rawPopulation("FRA", "68170228", `"2023"`, "France"),
		rawPopulation("tuv", "11396.0", `2023`, "Tuvalu"),
		rawPopulation("NUL", "null", `"2023"`, "Null land"),
		rawPopulation("ZER", "0", `"2023"`, "Zero land"),
		rawPopulation("WLD", "8000000000", `"2023"`, "World"),
	}, reg)

	require.Len(t, selected, 2)

	fra := selected["FRA"]
	assert.Equal(t, "France", fra.Name)
	assert.Equal(t, int64(68170228), fra.Population)
	year, ok := fra.Year.Int()
	require.True(t, ok)
	assert.Equal(t, 2023, year)

	tuv := selected["TUV"]
	assert.Equal(t, "Tuvalu", tuv.Name, "falls back to the statistics name")
	assert.Equal(t, int64(11396), tuv.Population)

	assert.NotContains(t, selected, "NUL")
	assert.NotContains(t, selected, "ZER")
	assert.Equal(t, 1, obs.skips["population/null_value"])
	assert.Equal(t, 1, obs.skips["population/non_positive"])
	assert.Equal(t, 1, obs.skips["population/not_a_country"])
}

func TestSelectPopulationKeepsUnparseableYear(t *testing.T) {
	t.Parallel()

	engine := New(Options{})
	reg := engine.BuildRegistry([]domain.RawCountry{rawCountry("ABC", "Somewhere", "Abc")})

	selected := engine.SelectPopulation([]domain.RawPopulation{
		rawPopulation("ABC", "10", `"2023Q1"`, ""),
	}, reg)

	obs := selected["ABC"]
	_, ok := obs.Year.Int()
	assert.False(t, ok)
	b, err := json.Marshal(obs.Year)
	require.NoError(t, err)
	assert.JSONEq(t, `"2023Q1"`, string(b))
}

func TestParsePopulation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   int64
		status populationStatus
	}{
		{raw: "", status: populationNull},
		{raw: "null", status: populationNull},
		{raw: "42", want: 42, status: populationOK},
		{raw: "42.9", want: 42, status: populationOK},
		{raw: `"1200"`, want: 1200, status: populationOK},
		{raw: `"lots"`, status: populationInvalid},
		{raw: "true", status: populationInvalid},
		{raw: "-5", want: -5, status: populationOK},
	}

	for _, tt := range tests {
		got, status := parsePopulation(json.RawMessage(tt.raw))
		assert.Equal(t, tt.status, status, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
