package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		want     int
		parsed   bool
		wireJSON string
	}{
		{raw: `"2023"`, want: 2023, parsed: true, wireJSON: `2023`},
		{raw: `" 2021 "`, want: 2021, parsed: true, wireJSON: `2021`},
		{raw: `2022`, want: 2022, parsed: true, wireJSON: `2022`},
		{raw: `2020.0`, want: 2020, parsed: true, wireJSON: `2020`},
		{raw: `"2019Q4"`, parsed: false, wireJSON: `"2019Q4"`},
		{raw: `null`, parsed: false, wireJSON: `null`},
		{raw: ``, parsed: false, wireJSON: `null`},
	}

	for _, tt := range tests {
		year := ParseYear(json.RawMessage(tt.raw))
		got, ok := year.Int()
		assert.Equal(t, tt.parsed, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)

		b, err := json.Marshal(year)
		require.NoError(t, err)
		assert.JSONEq(t, tt.wireJSON, string(b), tt.raw)
	}
}

func TestOptional(t *testing.T) {
	t.Parallel()

	none := None[string]()
	_, ok := none.Get()
	assert.False(t, ok)
	assert.Equal(t, "", none.OrZero())

	some := Some("")
	assert.True(t, some.Present(), "an empty value is still present")
}

func TestGovernmentFormsAdd(t *testing.T) {
	t.Parallel()

	forms := GovernmentForms{}
	forms.Add("  Presidential System ")
	forms.Add("")
	forms.Add("presidential system")

	assert.Len(t, forms, 1)
	assert.Contains(t, forms, "presidential system")
}

func TestSnapshotEncode(t *testing.T) {
	t.Parallel()

	snapshot := NewSnapshot(map[string]CountryRecord{
		"840": {ISO3: "USA", Name: "United States", Population: 10, Year: YearOf(2023)},
		"004": {ISO3: "AFG", Name: "Afghanistan", Population: 5, Year: YearOf(2023)},
		"250": {
			ISO3:       "FRA",
			Name:       "France <&>",
			Population: 7,
			Year:       YearOf(2023),
			ISO2:       Some("FR"),
			FlagEmoji:  Some("🇫🇷"),
			Capital:    Some(CapitalInfo{Name: "Paris", Coordinates: Some(LatLng{Lat: 48.87, Lng: 2.33})}),
			Leader:     Some(Leader{Name: "Président", Role: RoleHeadOfState, Source: LeaderSourceWikidata}),
		},
	})

	assert.Equal(t, []string{"004", "250", "840"}, snapshot.Keys())

	out, err := snapshot.Encode()
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasSuffix(text, "}\n"))
	assert.True(t, strings.HasPrefix(text, "{\n  \"004\": {\n    \"iso3\": \"AFG\""))
	assert.Less(t, strings.Index(text, `"004"`), strings.Index(text, `"250"`))
	assert.Less(t, strings.Index(text, `"250"`), strings.Index(text, `"840"`))
	assert.Contains(t, text, "France <&>")
	assert.Contains(t, text, "🇫🇷")
	assert.Contains(t, text, "Président")
	assert.Contains(t, text, `"capitalLat": 48.87`)
	assert.Contains(t, text, `"leaderRole": "head_of_state"`)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 3)
	assert.Equal(t, "FR", decoded["250"]["iso2"])
}

func TestSnapshotEmpty(t *testing.T) {
	t.Parallel()

	out, err := NewSnapshot(nil).Encode()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}
