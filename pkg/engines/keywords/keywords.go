// Package keywords pulls keyword suggestions from the Google Autocomplete
// endpoint, which needs no API key.
package keywords

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "https://suggestqueries.google.com/complete/search"

// Client queries Google Autocomplete for keyword suggestions.
type Client struct {
	http     *http.Client
	endpoint string
	lang     string
}

// New returns a Client suggesting in the given language ("en" when empty).
func New(lang string) *Client {
	if lang == "" {
		lang = "en"
	}
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: defaultEndpoint,
		lang:     lang,
	}
}

// Autocomplete returns Google's suggestions for a query. Network or parse
// failures yield an empty list, suggestions are best-effort.
func (c *Client) Autocomplete(query string) []string {
	params := url.Values{}
	params.Set("client", "firefox")
	params.Set("q", query)
	params.Set("hl", c.lang)

	resp, err := c.http.Get(c.endpoint + "?" + params.Encode())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	// Response shape: [query, [suggestion, ...], ...]
	var payload []json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil || len(payload) < 2 {
		return nil
	}
	var suggestions []string
	if err := json.Unmarshal(payload[1], &suggestions); err != nil {
		return nil
	}
	return suggestions
}

// PeopleAlsoSearch expands a query with question and comparison modifiers,
// deduplicating case-insensitively in first-seen order.
func (c *Client) PeopleAlsoSearch(query string) []string {
	modifiers := []string{"how", "why", "what", "vs", "best", "for"}
	seen := map[string]bool{}
	var results []string

	for _, mod := range modifiers {
		for _, s := range c.Autocomplete(query + " " + mod) {
			lower := strings.ToLower(s)
			if !seen[lower] {
				seen[lower] = true
				results = append(results, s)
			}
		}
	}
	return results
}

// Idea is one suggested keyword and the seed that produced it.
type Idea struct {
	Keyword string
	Source  string
}

// KeywordIdeas collects suggestions for each seed keyword, deduplicated
// case-insensitively across seeds.
func (c *Client) KeywordIdeas(seeds []string) []Idea {
	seen := map[string]bool{}
	var ideas []Idea

	for _, seed := range seeds {
		for _, s := range c.Autocomplete(seed) {
			lower := strings.ToLower(s)
			if !seen[lower] {
				seen[lower] = true
				ideas = append(ideas, Idea{Keyword: s, Source: seed})
			}
		}
	}
	return ideas
}
