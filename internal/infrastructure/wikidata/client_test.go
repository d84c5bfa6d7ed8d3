package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PopulationSnapshot/internal/infrastructure/fetch"
)

func TestFetchLeaders(t *testing.T) {
	t.Parallel()

	var gotAccept, gotUA, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(`{
			"head": {"vars": ["iso2", "hogLabel", "hogImage", "hosLabel", "hosImage"]},
			"results": {"bindings": [
				{
					"iso2": {"type": "literal", "value": "fr"},
					"hosLabel": {"type": "literal", "xml:lang": "en", "value": " Emmanuel Macron "},
					"hosImage": {"type": "uri", "value": "http://commons.wikimedia.org/wiki/Special:FilePath/Macron.jpg"}
				},
				{
					"iso2": {"type": "literal", "value": "DE"},
					"hogLabel": "Plain Value",
					"hosImage": ["unexpected"]
				}
			]}
		}`))
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(fetch.Options{HTTPClient: server.Client()}), server.URL+"/sparql", nil)

	rows, err := client.FetchLeaders(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "application/sparql-results+json", gotAccept)
	assert.True(t, strings.HasPrefix(gotUA, fetch.DefaultUserAgent))
	assert.True(t, strings.HasSuffix(gotUA, "(https://query.wikidata.org/)"))
	assert.Contains(t, gotQuery, "wdt:P35")

	assert.Equal(t, "fr", rows[0].Get("iso2"))
	assert.Equal(t, "Emmanuel Macron", rows[0].Get("hosLabel"))
	assert.Equal(t, "", rows[0].Get("hogLabel"))
	assert.Equal(t, "Plain Value", rows[1].Get("hogLabel"))
	assert.Equal(t, "", rows[1].Get("hosImage"))
}

func TestFetchGovernmentFormsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "query timeout", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(fetch.Options{HTTPClient: server.Client()}), server.URL, nil)

	_, err := client.FetchGovernmentForms(context.Background())
	var srcErr *fetch.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, SourceGovernmentForms, srcErr.Source)
	assert.Equal(t, http.StatusInternalServerError, srcErr.Status)
}
