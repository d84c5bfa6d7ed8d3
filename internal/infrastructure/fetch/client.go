// Package fetch performs the single-attempt HTTP reads every source adapter is built on.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"PopulationSnapshot/internal/ports"
)

const (
	// DefaultTimeout bounds every request.
	DefaultTimeout = 45 * time.Second
	// DefaultUserAgent identifies the builder to upstream providers.
	DefaultUserAgent = "world-outline-map-data-builder/1.0"

	errorSnippetLimit = 512
)

// SourceError reports a failed read of an upstream source. It is never retried.
type SourceError struct {
	Source string
	URL    string
	Status int
	Err    error
}

func (e *SourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("source %s: %s returned status %d: %v", e.Source, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("source %s: %s: %v", e.Source, e.URL, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Request describes one GET against a source.
type Request struct {
	Source    string
	URL       string
	Accept    string
	UserAgent string
}

// Client wraps an *http.Client with the builder's identifying headers and status handling.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
	recorder  ports.BuildRecorder
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger
	Recorder   ports.BuildRecorder
}

// NewClient builds a client; a nil HTTPClient gets one with Timeout (default 45s).
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{http: client, userAgent: ua, logger: opts.Logger, recorder: opts.Recorder}
}

// UserAgent returns the default identifying header value.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get reads the full response body of a successful (200) response.
func (c *Client) Get(ctx context.Context, r Request) ([]byte, error) {
	started := time.Now()
	body, err := c.get(ctx, r)
	elapsed := time.Since(started)

	if c.recorder != nil {
		c.recorder.ObserveFetch(r.Source, elapsed)
	}
	if err != nil {
		return nil, err
	}
	c.debug("source fetched", "source", r.Source, "bytes", len(body), "elapsed", elapsed)
	return body, nil
}

func (c *Client) get(ctx context.Context, r Request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, &SourceError{Source: r.Source, URL: r.URL, Err: fmt.Errorf("build request: %w", err)}
	}

	ua := r.UserAgent
	if ua == "" {
		ua = c.userAgent
	}
	req.Header.Set("User-Agent", ua)
	if r.Accept != "" {
		req.Header.Set("Accept", r.Accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SourceError{Source: r.Source, URL: r.URL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetLimit))
		return nil, &SourceError{
			Source: r.Source,
			URL:    r.URL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceError{Source: r.Source, URL: r.URL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// GetJSON decodes a successful response into v.
func (c *Client) GetJSON(ctx context.Context, r Request, v any) error {
	body, err := c.Get(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &SourceError{Source: r.Source, URL: r.URL, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// GetText returns a successful response as UTF-8 text.
func (c *Client) GetText(ctx context.Context, r Request) (string, error) {
	body, err := c.Get(ctx, r)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
