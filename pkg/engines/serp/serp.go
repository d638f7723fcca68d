// Package serp fetches Google search results through a chain of providers:
// a local SearXNG instance first, then the Custom Search JSON API, then
// direct HTML scraping as a last resort.
package serp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	defaultSearxngURL = "http://localhost:8013"
	defaultCSEURL     = "https://www.googleapis.com/customsearch/v1"
	defaultGoogleURL  = "https://www.google.com/search"

	// Plain browser UA for the scrape fallback; Google serves the classic
	// HTML layout to it.
	scrapeUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Result is one organic search result.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Client resolves SERPs for queries. The CSE key and cx are optional; the
// client degrades to scraping without them.
type Client struct {
	http       *http.Client
	searxngURL string
	cseURL     string
	googleURL  string
	apiKey     string
	cx         string
	lang       string
}

// New returns a Client. apiKey and cx enable the Custom Search API tier and
// may be empty.
func New(apiKey, cx, lang string) *Client {
	if lang == "" {
		lang = "en"
	}
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		searxngURL: defaultSearxngURL,
		cseURL:     defaultCSEURL,
		googleURL:  defaultGoogleURL,
		apiKey:     apiKey,
		cx:         cx,
		lang:       lang,
	}
}

// SetSearxngURL points the client at a different SearXNG instance.
func (c *Client) SetSearxngURL(u string) {
	c.searxngURL = strings.TrimRight(u, "/")
}

// Search returns up to num organic results, trying SearXNG, then the CSE
// API, then scraping. An empty slice means every tier came up dry.
func (c *Client) Search(query string, num int) []Result {
	if results := c.searxngSearch(query, num); len(results) > 0 {
		return results
	}
	if c.apiKey != "" && c.cx != "" {
		if results := c.cseSearch(query, num); len(results) > 0 {
			return results
		}
	}
	return c.scrapeSearch(query, num)
}

// searxngSearch queries a local SearXNG instance. Unreachable or failing
// instances yield nil so the chain can move on.
func (c *Client) searxngSearch(query string, num int) []Result {
	payload, err := json.Marshal(map[string]any{
		"query":       query,
		"max_results": num,
		"engines":     "google",
	})
	if err != nil {
		return nil
	}
	resp, err := c.http.Post(c.searxngURL+"/search", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var out struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}

	var results []Result
	seen := map[string]bool{}
	for _, item := range out.Results {
		if item.URL == "" || seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		results = append(results, Result{
			URL:      item.URL,
			Title:    item.Title,
			Snippet:  item.Content,
			Position: len(results) + 1,
		})
		if len(results) >= num {
			break
		}
	}
	return results
}

// cseSearch pages through the Custom Search JSON API ten results at a time.
// Quota responses (429, 403) end the paging with whatever was collected.
func (c *Client) cseSearch(query string, num int) []Result {
	var results []Result
	for start := 1; start <= num; start += 10 {
		params := url.Values{}
		params.Set("key", c.apiKey)
		params.Set("cx", c.cx)
		params.Set("q", query)
		params.Set("hl", c.lang)
		params.Set("num", fmt.Sprint(min(10, num-len(results))))
		params.Set("start", fmt.Sprint(start))

		resp, err := c.http.Get(c.cseURL + "?" + params.Encode())
		if err != nil {
			break
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			break
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			break
		}

		var out struct {
			Items []struct {
				Link    string `json:"link"`
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"items"`
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil || len(out.Items) == 0 {
			break
		}

		for _, item := range out.Items {
			results = append(results, Result{
				URL:      item.Link,
				Title:    item.Title,
				Snippet:  item.Snippet,
				Position: len(results) + 1,
			})
			if len(results) >= num {
				return results
			}
		}
	}
	return results
}

var (
	resultBlockRe = regexp.MustCompile(`(?s)<div class="[^"]*?g[^"]*?"[^>]*>.*?</div>\s*</div>\s*</div>`)
	resultLinkRe  = regexp.MustCompile(`<a[^>]+href="(/url\?q=([^&"]+)|https?://[^"]+)"[^>]*>`)
	headingRe     = regexp.MustCompile(`(?s)<h3[^>]*>(.*?)</h3>`)
	anyTagRe      = regexp.MustCompile(`<[^>]+>`)
)

// scrapeSearch pulls result links out of Google's HTML. Fragile and easily
// blocked, hence last in the chain.
func (c *Client) scrapeSearch(query string, num int) []Result {
	searchURL := fmt.Sprintf("%s?q=%s&hl=%s&num=%d&gl=us",
		c.googleURL, url.QueryEscape(query), c.lang, num)
	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", scrapeUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
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
	html := string(data)

	blocks := resultBlockRe.FindAllString(html, -1)
	if len(blocks) == 0 {
		blocks = []string{html}
	}

	var results []Result
	seen := map[string]bool{}
	for _, block := range blocks {
		for _, m := range resultLinkRe.FindAllStringSubmatch(block, -1) {
			href := m[2]
			if href == "" {
				href = m[1]
			}
			href = strings.TrimPrefix(href, "/url?q=")
			parsed, err := url.Parse(href)
			if err != nil || parsed.Host == "" || strings.Contains(parsed.Host, "google.") || seen[href] {
				continue
			}
			title := ""
			if h3 := headingRe.FindStringSubmatch(block); h3 != nil {
				title = strings.TrimSpace(anyTagRe.ReplaceAllString(h3[1], ""))
			}
			seen[href] = true
			results = append(results, Result{URL: href, Title: title, Position: len(results) + 1})
			break
		}
		if len(results) >= num {
			break
		}
	}
	if len(results) > num {
		results = results[:num]
	}
	return results
}
