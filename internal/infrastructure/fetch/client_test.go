package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchRecorder struct {
	sources []string
}

func (f *fetchRecorder) RowSkipped(string, string)     {}
func (f *fetchRecorder) ObserveSnapshot(int)           {}
func (f *fetchRecorder) ObserveResult(bool, time.Time) {}

func (f *fetchRecorder) ObserveFetch(source string, _ time.Duration) {
	f.sources = append(f.sources, source)
}

func TestClientSendsHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	rec := &fetchRecorder{}
	client := NewClient(Options{HTTPClient: server.Client(), Recorder: rec})

	var payload struct {
		OK bool `json:"ok"`
	}
	err := client.GetJSON(context.Background(), Request{Source: "test", URL: server.URL, Accept: "application/json"}, &payload)
	require.NoError(t, err)

	assert.True(t, payload.OK)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, []string{"test"}, rec.sources)
}

func TestClientRequestUserAgentOverride(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("a,b\n"))
	}))
	defer server.Close()

	client := NewClient(Options{HTTPClient: server.Client(), UserAgent: "custom/2.0"})
	text, err := client.GetText(context.Background(), Request{Source: "csv", URL: server.URL, UserAgent: "special/1.0"})
	require.NoError(t, err)

	assert.Equal(t, "a,b\n", text)
	assert.Equal(t, "special/1.0", gotUA)
	assert.Equal(t, "custom/2.0", client.UserAgent())
}

func TestClientStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Options{HTTPClient: server.Client()})
	_, err := client.Get(context.Background(), Request{Source: "wikidata", URL: server.URL})
	require.Error(t, err)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "wikidata", srcErr.Source)
	assert.Equal(t, http.StatusTooManyRequests, srcErr.Status)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClientDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(Options{HTTPClient: server.Client()})
	var v map[string]any
	err := client.GetJSON(context.Background(), Request{Source: "flags", URL: server.URL}, &v)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, 0, srcErr.Status)
}

func TestClientTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Options{Timeout: 50 * time.Millisecond})
	_, err := client.Get(context.Background(), Request{Source: "slow", URL: server.URL})

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "slow", srcErr.Source)
}

func TestDecodeRowsSkipsMalformed(t *testing.T) {
	t.Parallel()

	type row struct {
		ID string `json:"id"`
	}

	var skipped []int
	rows := DecodeRows[row]([]json.RawMessage{
		json.RawMessage(`{"id": "A"}`),
		json.RawMessage(`{"id": 7}`),
		json.RawMessage(`{"id": "B"}`),
	}, func(i int, _ error) { skipped = append(skipped, i) })

	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[1].ID)
	assert.Equal(t, []int{1}, skipped)
}
