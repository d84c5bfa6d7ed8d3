// Package worldbank reads the World Bank country list and population indicator.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/ports"
)

const (
	SourceCountries  = "worldbank_countries"
	SourcePopulation = "worldbank_population"

	DefaultCountriesURL  = "https://api.worldbank.org/v2/country?format=json&per_page=400"
	DefaultPopulationURL = "https://api.worldbank.org/v2/country/all/indicator/SP.POP.TOTL?format=json&mrv=1&per_page=20000"

	// maxPages guards against a provider that never reports the last page.
	maxPages = 100
)

// Client fetches both World Bank endpoints. Responses use the [pagination, rows] envelope.
type Client struct {
	fetch         *fetch.Client
	countriesURL  string
	populationURL string
	logger        *slog.Logger
	observer      ports.SkipObserver
}

var (
	_ ports.CountrySource    = (*Client)(nil)
	_ ports.PopulationSource = (*Client)(nil)
)

// NewClient wires the endpoints; empty URLs fall back to the public API.
func NewClient(f *fetch.Client, countriesURL, populationURL string, logger *slog.Logger, observer ports.SkipObserver) *Client {
	if countriesURL == "" {
		countriesURL = DefaultCountriesURL
	}
	if populationURL == "" {
		populationURL = DefaultPopulationURL
	}
	return &Client{
		fetch:         f,
		countriesURL:  countriesURL,
		populationURL: populationURL,
		logger:        logger,
		observer:      observer,
	}
}

// FetchCountries returns every country-list entry, aggregates included.
func (c *Client) FetchCountries(ctx context.Context) ([]domain.RawCountry, error) {
	raw, err := c.fetchAll(ctx, SourceCountries, c.countriesURL)
	if err != nil {
		return nil, err
	}
	return fetch.DecodeRows[domain.RawCountry](raw, c.onSkip(SourceCountries)), nil
}

// FetchPopulation returns the latest population row per entity.
func (c *Client) FetchPopulation(ctx context.Context) ([]domain.RawPopulation, error) {
	raw, err := c.fetchAll(ctx, SourcePopulation, c.populationURL)
	if err != nil {
		return nil, err
	}
	return fetch.DecodeRows[domain.RawPopulation](raw, c.onSkip(SourcePopulation)), nil
}

type pagination struct {
	Page  json.Number `json:"page"`
	Pages json.Number `json:"pages"`
}

// fetchAll walks every page the envelope reports, one request after another.
func (c *Client) fetchAll(ctx context.Context, source, base string) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	for page := 1; page <= maxPages; page++ {
		pageURL := base
		if page > 1 {
			var err error
			if pageURL, err = buildPageURL(base, page); err != nil {
				return nil, &fetch.SourceError{Source: source, URL: base, Err: err}
			}
		}

		var envelope []json.RawMessage
		if err := c.fetch.GetJSON(ctx, fetch.Request{Source: source, URL: pageURL}, &envelope); err != nil {
			return nil, err
		}
		if len(envelope) < 2 {
			return nil, &fetch.SourceError{Source: source, URL: pageURL, Err: fmt.Errorf("unexpected envelope with %d elements", len(envelope))}
		}

		var pageRows []json.RawMessage
		if err := json.Unmarshal(envelope[1], &pageRows); err != nil {
			return nil, &fetch.SourceError{Source: source, URL: pageURL, Err: fmt.Errorf("decode rows: %w", err)}
		}
		rows = append(rows, pageRows...)

		var meta pagination
		if err := json.Unmarshal(envelope[0], &meta); err != nil {
			break
		}
		pages, err := meta.Pages.Int64()
		if err != nil || int64(page) >= pages {
			break
		}
		c.debug("fetching next page", "source", source, "page", page+1, "pages", pages)
	}
	return rows, nil
}

func buildPageURL(base string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid url %s: %w", base, err)
	}
	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) onSkip(source string) func(int, error) {
	return func(index int, err error) {
		if c.observer != nil {
			c.observer.RowSkipped(source, "malformed_row")
		}
		c.debug("row skipped", "source", source, "index", index, "error", err)
	}
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
