// Package countrycodes reads the datasets/country-codes crosswalk table.
package countrycodes

import (
	"context"

	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/ports"
)

const (
	Source     = "country_codes"
	DefaultURL = "https://raw.githubusercontent.com/datasets/country-codes/main/data/country-codes.csv"
)

// Client downloads the crosswalk CSV.
type Client struct {
	fetch *fetch.Client
	url   string
}

var _ ports.CrosswalkSource = (*Client)(nil)

// NewClient wires the table location; an empty URL uses the public dataset.
func NewClient(f *fetch.Client, url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{fetch: f, url: url}
}

// FetchCrosswalk returns the raw CSV text.
func (c *Client) FetchCrosswalk(ctx context.Context) (string, error) {
	return c.fetch.GetText(ctx, fetch.Request{Source: Source, URL: c.url, Accept: "text/csv"})
}
