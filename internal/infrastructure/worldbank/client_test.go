package worldbank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"PopulationSnapshot/internal/infrastructure/fetch"
)

func TestFetchCountries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"page": 1, "pages": 1, "per_page": "400", "total": 3},
			[
				{"id": "FRA", "name": "France", "region": {"id": "ECS", "value": "Europe & Central Asia"}},
				{"id": "WLD", "name": "World", "region": {"id": "NA", "value": "Aggregates"}},
				{"id": "BAD", "name": "Broken", "region": "not an object"}
			]
		]`))
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(fetch.Options{HTTPClient: server.Client()}), server.URL+"/country?format=json", "", nil, nil)

	countries, err := client.FetchCountries(context.Background())
	if err != nil {
		t.Fatalf("FetchCountries error: %v", err)
	}
	if len(countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(countries))
	}
	if countries[0].ID != "FRA" || countries[0].Region.Value != "Europe & Central Asia" {
		t.Fatalf("unexpected first country: %+v", countries[0])
	}
	if countries[1].Region.Value != "Aggregates" {
		t.Fatalf("unexpected region: %s", countries[1].Region.Value)
	}
}

func TestFetchPopulationFollowsPages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			_, _ = w.Write([]byte(`[{"page": 1, "pages": 2}, [
				{"countryiso3code": "FRA", "value": 68170228, "date": "2023", "country": {"id": "FR", "value": "France"}}
			]]`))
		case "2":
			_, _ = w.Write([]byte(`[{"page": 2, "pages": 2}, [
				{"countryiso3code": "TUV", "value": null, "date": "2023", "country": {"id": "TV", "value": "Tuvalu"}}
			]]`))
		default:
			http.Error(w, "no such page", http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(fetch.Options{HTTPClient: server.Client()}), "", server.URL+"/indicator?format=json", nil, nil)

	rows, err := client.FetchPopulation(context.Background())
	if err != nil {
		t.Fatalf("FetchPopulation error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CountryISO3 != "FRA" || string(rows[0].Value) != "68170228" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Country.Value != "Tuvalu" || string(rows[1].Value) != "null" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestFetchRejectsErrorEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"message": [{"id": "120", "key": "Invalid value"}]}]`))
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(fetch.Options{HTTPClient: server.Client()}), server.URL, server.URL, nil, nil)

	_, err := client.FetchCountries(context.Background())
	var srcErr *fetch.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
	if srcErr.Source != SourceCountries {
		t.Fatalf("unexpected source: %s", srcErr.Source)
	}
}

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	u, err := buildPageURL("https://api.worldbank.org/v2/country?format=json&per_page=400", 3)
	if err != nil {
		t.Fatalf("buildPageURL returned error: %v", err)
	}
	if u != "https://api.worldbank.org/v2/country?format=json&page=3&per_page=400" {
		t.Fatalf("unexpected url: %s", u)
	}
}
