// Package wikidata runs the SPARQL queries that supply government forms and office holders.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/ports"
)

const (
	SourceGovernmentForms = "wikidata_government_forms"
	SourceLeaders         = "wikidata_leaders"

	DefaultEndpoint = "https://query.wikidata.org/sparql"

	sparqlResultsJSON = "application/sparql-results+json"
	userAgentSuffix   = " (https://query.wikidata.org/)"
)

// LeadersQuery binds head of government (P6) and head of state (P35) with optional portraits (P18).
const LeadersQuery = `
SELECT ?iso2 ?hogLabel ?hogImage ?hosLabel ?hosImage WHERE {
  ?country wdt:P297 ?iso2.
  FILTER(STRLEN(?iso2) = 2)
  OPTIONAL {
    ?country wdt:P6 ?hog.
    OPTIONAL { ?hog wdt:P18 ?hogImage. }
  }
  OPTIONAL {
    ?country wdt:P35 ?hos.
    OPTIONAL { ?hos wdt:P18 ?hosImage. }
  }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
`

// GovernmentFormsQuery binds every basic form of government (P122) per country.
const GovernmentFormsQuery = `
SELECT ?iso2 ?govFormLabel WHERE {
  ?country wdt:P297 ?iso2.
  FILTER(STRLEN(?iso2) = 2)
  OPTIONAL { ?country wdt:P122 ?govForm. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
`

// Client queries a SPARQL endpoint.
type Client struct {
	fetch    *fetch.Client
	endpoint string
	logger   *slog.Logger
}

var _ ports.LeadershipSource = (*Client)(nil)

// NewClient wires the endpoint; an empty endpoint uses the public Wikidata service.
func NewClient(f *fetch.Client, endpoint string, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{fetch: f, endpoint: endpoint, logger: logger}
}

// FetchGovernmentForms returns one binding per (country, government form) pair.
func (c *Client) FetchGovernmentForms(ctx context.Context) ([]domain.Binding, error) {
	return c.query(ctx, SourceGovernmentForms, GovernmentFormsQuery)
}

// FetchLeaders returns one binding per combination of office holders and portraits.
func (c *Client) FetchLeaders(ctx context.Context) ([]domain.Binding, error) {
	return c.query(ctx, SourceLeaders, LeadersQuery)
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]json.RawMessage `json:"bindings"`
	} `json:"results"`
}

func (c *Client) query(ctx context.Context, source, query string) ([]domain.Binding, error) {
	queryURL, err := buildQueryURL(c.endpoint, query)
	if err != nil {
		return nil, &fetch.SourceError{Source: source, URL: c.endpoint, Err: err}
	}

	var resp sparqlResponse
	req := fetch.Request{
		Source:    source,
		URL:       queryURL,
		Accept:    sparqlResultsJSON,
		UserAgent: c.fetch.UserAgent() + userAgentSuffix,
	}
	if err := c.fetch.GetJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	bindings := make([]domain.Binding, 0, len(resp.Results.Bindings))
	for _, row := range resp.Results.Bindings {
		bindings = append(bindings, flatten(row))
	}
	if c.logger != nil {
		c.logger.Debug("sparql query done", "source", source, "bindings", len(bindings))
	}
	return bindings, nil
}

func buildQueryURL(endpoint, query string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}
	params := parsed.Query()
	params.Set("query", query)
	parsed.RawQuery = params.Encode()
	return parsed.String(), nil
}

// flatten unwraps {"type": ..., "value": ...} cells. Plain scalar cells are accepted as-is
// and cells of any other shape are treated as unbound.
func flatten(row map[string]json.RawMessage) domain.Binding {
	out := make(domain.Binding, len(row))
	for name, cell := range row {
		var wrapped struct {
			Value any `json:"value"`
		}
		if err := json.Unmarshal(cell, &wrapped); err == nil {
			if s, ok := scalar(wrapped.Value); ok {
				out[name] = s
			}
			continue
		}
		var plain any
		if err := json.Unmarshal(cell, &plain); err == nil {
			if s, ok := scalar(plain); ok {
				out[name] = s
			}
		}
	}
	return out
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}
