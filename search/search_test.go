package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "custom camper van builders in Texas", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))

		_, _ = w.Write([]byte(`{
			"web": {
				"results": [
					{"title": "Acme Van Co", "url": "https://acmevan.com", "description": "Custom camper vans"},
					{"title": "Hill Country Vans", "url": "https://hcvans.com", "description": "Sprinter builds"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", WithEndpoint(srv.URL))

	results := c.Search(context.Background(), "custom camper van builders in Texas")

	require.Len(t, results, 2)
	assert.Equal(t, "Acme Van Co", results[0].Title)
	assert.Equal(t, "https://acmevan.com", results[0].URL)
	assert.Equal(t, "Custom camper vans", results[0].Snippet)
}

func TestSearch_HTTPErrorYieldsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("secret-token", WithEndpoint(srv.URL))

	assert.Empty(t, c.Search(context.Background(), "anything"))
}

func TestSearch_BadJSONYieldsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("definitely not json"))
	}))
	defer srv.Close()

	c := NewClient("secret-token", WithEndpoint(srv.URL))

	assert.Empty(t, c.Search(context.Background(), "anything"))
}

func TestSearch_UnreachableEndpointYieldsNoResults(t *testing.T) {
	c := NewClient("secret-token", WithEndpoint("http://127.0.0.1:1"))

	assert.Empty(t, c.Search(context.Background(), "anything"))
}

func TestSearch_TruncatesOversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"web": {"results": [
			{"url": "1"}, {"url": "2"}, {"url": "3"}, {"url": "4"}, {"url": "5"},
			{"url": "6"}, {"url": "7"}, {"url": "8"}, {"url": "9"}, {"url": "10"},
			{"url": "11"}, {"url": "12"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", WithEndpoint(srv.URL))

	assert.Len(t, c.Search(context.Background(), "anything"), pageSize)
}

func TestStateQueries(t *testing.T) {
	queries := StateQueries("Texas")

	require.Len(t, queries, 3)

	for _, q := range queries {
		assert.Contains(t, q, "Texas")
	}
}
