// Package flags reads the flag emoji table keyed by alpha-2 code.
package flags

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/infrastructure/fetch"
	"PopulationSnapshot/internal/ports"
)

const (
	Source     = "flag_emoji"
	DefaultURL = "https://cdn.jsdelivr.net/npm/country-flag-emoji-json@2.0.0/dist/by-code.json"
)

// Client downloads the by-code emoji table.
type Client struct {
	fetch    *fetch.Client
	url      string
	logger   *slog.Logger
	observer ports.SkipObserver
}

var _ ports.FlagSource = (*Client)(nil)

// NewClient wires the table location; an empty URL uses the public CDN copy.
func NewClient(f *fetch.Client, url string, logger *slog.Logger, observer ports.SkipObserver) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{fetch: f, url: url, logger: logger, observer: observer}
}

type entry struct {
	Emoji string `json:"emoji"`
}

// FetchFlags returns alpha-2 code -> emoji. Entries without an emoji are left out.
func (c *Client) FetchFlags(ctx context.Context) (domain.FlagEmojis, error) {
	var raw map[string]json.RawMessage
	if err := c.fetch.GetJSON(ctx, fetch.Request{Source: Source, URL: c.url}, &raw); err != nil {
		return nil, err
	}

	emojis := make(domain.FlagEmojis, len(raw))
	for code, item := range raw {
		var e entry
		if err := json.Unmarshal(item, &e); err != nil {
			c.skip("malformed_row", "code", code, "error", err)
			continue
		}
		emoji := strings.TrimSpace(e.Emoji)
		if emoji == "" {
			continue
		}
		emojis[strings.ToUpper(strings.TrimSpace(code))] = emoji
	}
	return emojis, nil
}

func (c *Client) skip(reason string, args ...any) {
	if c.observer != nil {
		c.observer.RowSkipped(Source, reason)
	}
	if c.logger != nil {
		c.logger.Debug("row skipped", append([]any{"source", Source, "reason", reason}, args...)...)
	}
}
