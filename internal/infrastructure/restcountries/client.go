// Package restcountries reads capitals and their coordinates.
package restcountries

import (
	"context"
	"encoding/json"
	"log/slog"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/ports"
)

const (
	Source     = "restcountries"
	DefaultURL = "https://restcountries.com/v3.1/all?fields=cca3,capital,capitalInfo"
)

// Client downloads the capital list.
type Client struct {
	fetch    *fetch.Client
	url      string
	logger   *slog.Logger
	observer ports.SkipObserver
}

var _ ports.CapitalSource = (*Client)(nil)

// NewClient wires the endpoint; an empty URL uses the public API.
func NewClient(f *fetch.Client, url string, logger *slog.Logger, observer ports.SkipObserver) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{fetch: f, url: url, logger: logger, observer: observer}
}

// FetchCapitals returns one raw entry per country; entries that do not decode are skipped.
func (c *Client) FetchCapitals(ctx context.Context) ([]domain.RawCapital, error) {
	var raw []json.RawMessage
	if err := c.fetch.GetJSON(ctx, fetch.Request{Source: Source, URL: c.url}, &raw); err != nil {
		return nil, err
	}
	return fetch.DecodeRows[domain.RawCapital](raw, func(index int, err error) {
		if c.observer != nil {
			c.observer.RowSkipped(Source, "malformed_row")
		}
		if c.logger != nil {
			c.logger.Debug("row skipped", "source", Source, "index", index, "error", err)
		}
	}), nil
}
