package serp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/pkg/fetch"
)

func TestSearxngSearchDeduplicatesAndNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "golang seo", body["query"])
		assert.Equal(t, "google", body["engines"])
		json.NewEncoder(w).Encode(map[string]any{"results": []any{
			map[string]any{"url": "https://a.com/", "title": "A", "content": "first"},
			map[string]any{"url": "https://a.com/", "title": "A dup"},
			map[string]any{"url": "https://b.com/", "title": "B"},
		}})
	}))
	defer srv.Close()

	c := New("", "", "en")
	c.searxngURL = srv.URL

	results := c.Search("golang seo", 10)
	require.Len(t, results, 2)
	assert.Equal(t, Result{URL: "https://a.com/", Title: "A", Snippet: "first", Position: 1}, results[0])
	assert.Equal(t, 2, results[1].Position)
}

func TestSearchFallsBackToCSE(t *testing.T) {
	searxng := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer searxng.Close()

	cse := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key1", r.URL.Query().Get("key"))
		assert.Equal(t, "cx1", r.URL.Query().Get("cx"))
		json.NewEncoder(w).Encode(map[string]any{"items": []any{
			map[string]any{"link": "https://c.com/", "title": "C", "snippet": "via api"},
		}})
	}))
	defer cse.Close()

	c := New("key1", "cx1", "en")
	c.searxngURL = searxng.URL
	c.cseURL = cse.URL
	c.googleURL = "http://127.0.0.1:1"

	results := c.Search("query", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "https://c.com/", results[0].URL)
	assert.Equal(t, "via api", results[0].Snippet)
}

func TestCSEStopsOnQuota(t *testing.T) {
	calls := 0
	cse := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]any{"items": []any{
				map[string]any{"link": "https://one.com/", "title": "One"},
			}})
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer cse.Close()

	c := New("key1", "cx1", "en")
	c.cseURL = cse.URL

	results := c.cseSearch("query", 20)
	require.Len(t, results, 1, "quota response keeps what was collected")
	assert.Equal(t, "https://one.com/", results[0].URL)
}

func TestScrapeSearchSkipsGoogleHosts(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="https://accounts.google.com/signin">Sign in</a>
<a href="/url?q=https://real-result.com/page&amp;sa=U">result</a>
<h3>Real <b>Result</b></h3>
</body></html>`)
	}))
	defer google.Close()

	c := New("", "", "en")
	c.searxngURL = "http://127.0.0.1:1"
	c.googleURL = google.URL

	results := c.Search("query", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "https://real-result.com/page", results[0].URL)
	assert.Equal(t, "Real Result", results[0].Title, "markup stripped from heading")
}

func TestExtractPageSEO(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
<title>Competitor Page</title>
<meta name="description" content="They rank for everything.">
<meta property="og:image" content="https://example.com/og.png">
<script type="application/ld+json">{"@type": "FAQPage"}</script>
</head><body>
<h1>Competitor H1</h1>
<p>Quality long form writing about search optimization with many words inside.</p>
</body></html>`)
	}))
	defer srv.Close()

	page := ExtractPageSEO(fetch.New(), srv.URL+"/post")
	assert.False(t, page.Err)
	assert.Equal(t, "Competitor Page", page.Title)
	assert.Equal(t, "They rank for everything.", page.Description)
	assert.Equal(t, "Competitor H1", page.H1)
	assert.True(t, page.OGImage)
	assert.Equal(t, []string{"FAQPage"}, page.SchemaTypes)
	assert.True(t, page.HasFAQ)
	assert.Greater(t, page.WordCount, 5)
}

func TestExtractPageSEOUnreachable(t *testing.T) {
	page := ExtractPageSEO(fetch.New(), "http://127.0.0.1:1/")
	assert.True(t, page.Err)
	assert.Equal(t, "http://127.0.0.1:1/", page.URL)
}
