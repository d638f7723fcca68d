package keywords

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutocompleteParsesSuggestionList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "firefox", r.URL.Query().Get("client"))
		assert.Equal(t, "seo tools", r.URL.Query().Get("q"))
		assert.Equal(t, "en", r.URL.Query().Get("hl"))
		fmt.Fprint(w, `["seo tools", ["seo tools free", "seo tools online"]]`)
	}))
	defer srv.Close()

	c := New("en")
	c.endpoint = srv.URL

	got := c.Autocomplete("seo tools")
	assert.Equal(t, []string{"seo tools free", "seo tools online"}, got)
}

func TestAutocompleteSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("en")
	c.endpoint = srv.URL
	assert.Empty(t, c.Autocomplete("anything"))

	c.endpoint = "http://127.0.0.1:1"
	assert.Empty(t, c.Autocomplete("anything"))
}

func TestPeopleAlsoSearchDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		fmt.Fprintf(w, `[%q, ["Shared Suggestion", "%s result"]]`, q, q)
	}))
	defer srv.Close()

	c := New("en")
	c.endpoint = srv.URL

	got := c.PeopleAlsoSearch("seo")
	require.NotEmpty(t, got)
	assert.Equal(t, "Shared Suggestion", got[0], "first-seen casing kept")

	count := 0
	for _, s := range got {
		if s == "Shared Suggestion" {
			count++
		}
	}
	assert.Equal(t, 1, count, "case-insensitive dedup across modifiers")
	assert.Contains(t, got, "seo how result")
	assert.Contains(t, got, "seo best result")
}

func TestKeywordIdeasAnnotateSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		fmt.Fprintf(w, `[%q, ["common idea", "%s idea"]]`, q, q)
	}))
	defer srv.Close()

	c := New("en")
	c.endpoint = srv.URL

	ideas := c.KeywordIdeas([]string{"alpha", "beta"})
	require.Len(t, ideas, 3, "shared suggestion deduplicated across seeds")
	assert.Equal(t, Idea{Keyword: "common idea", Source: "alpha"}, ideas[0])
	assert.Equal(t, Idea{Keyword: "alpha idea", Source: "alpha"}, ideas[1])
	assert.Equal(t, Idea{Keyword: "beta idea", Source: "beta"}, ideas[2])
}
