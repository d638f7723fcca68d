package indexnow

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitURLsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New("abc123")
	c.endpoint = srv.URL

	result, err := c.SubmitURLs("https://example.com", []string{
		"https://example.com/",
		"https://example.com/about",
	})
	require.NoError(t, err)
	assert.True(t, result.OK, "202 counts as accepted")
	assert.Equal(t, 2, result.URLCount)

	assert.Equal(t, "example.com", got["host"])
	assert.Equal(t, "abc123", got["key"])
	assert.Equal(t, "https://example.com/abc123.txt", got["keyLocation"])
	assert.Len(t, got["urlList"], 2)
}

func TestSubmitURLsRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("abc123")
	c.endpoint = srv.URL

	result, err := c.SubmitURLs("https://example.com", []string{"https://example.com/"})
	require.NoError(t, err, "a rejection is a result, not an error")
	assert.False(t, result.OK)
	assert.Equal(t, http.StatusForbidden, result.Status)
}

func TestSubmitSitemap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/about</loc></url>
  <url><loc></loc></url>
</urlset>`)
	})
	mux.HandleFunc("/indexnow", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New("abc123")
	c.endpoint = srv.URL + "/indexnow"

	result, err := c.SubmitSitemap("https://example.com", srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, 2, result.URLCount, "empty loc entries are dropped")
}

func TestSubmitSitemapEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
	}))
	defer srv.Close()

	c := New("abc123")
	_, err := c.SubmitSitemap("https://example.com", srv.URL+"/sitemap.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no URLs found in sitemap")
}
