// Package indexnow pushes URL change notifications to the IndexNow
// endpoint, which fans out to Bing, Yandex, Naver and Seznam. The key must
// be hosted at {site}/{key}.txt for the submission to verify.
package indexnow

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultEndpoint = "https://api.indexnow.org/indexnow"

// Client submits URLs under one IndexNow key.
type Client struct {
	http     *http.Client
	endpoint string
	key      string
}

// New returns a Client using the given key.
func New(key string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		endpoint: defaultEndpoint,
		key:      key,
	}
}

// Result reports the outcome of one submission.
type Result struct {
	Status   int
	OK       bool
	URLCount int
}

// SubmitURLs submits a batch of URLs for a site. The endpoint answers 200
// or 202 on success; anything else is reported as a failed Result, not an
// error, matching the protocol's fire-and-forget nature.
func (c *Client) SubmitURLs(siteURL string, urls []string) (*Result, error) {
	parsed, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url %s: %w", siteURL, err)
	}
	payload, err := json.Marshal(map[string]any{
		"host":        parsed.Host,
		"key":         c.key,
		"keyLocation": fmt.Sprintf("%s/%s.txt", siteURL, c.key),
		"urlList":     urls,
	})
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	resp, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("indexnow submit: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return &Result{
		Status:   resp.StatusCode,
		OK:       resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted,
		URLCount: len(urls),
	}, nil
}

// SubmitSitemap fetches a sitemap, extracts its <loc> entries and submits
// them all in one batch.
func (c *Client) SubmitSitemap(siteURL, sitemapURL string) (*Result, error) {
	urls, err := c.sitemapURLs(sitemapURL)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs found in sitemap %s", sitemapURL)
	}
	return c.SubmitURLs(siteURL, urls)
}

func (c *Client) sitemapURLs(sitemapURL string) ([]string, error) {
	resp, err := c.http.Get(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap %s: %w", sitemapURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sitemap %s: HTTP %d", sitemapURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sitemap %s: %w", sitemapURL, err)
	}

	var doc struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sitemap %s: %w", sitemapURL, err)
	}

	var urls []string
	for _, u := range doc.URLs {
		if u.Loc != "" {
			urls = append(urls, u.Loc)
		}
	}
	return urls, nil
}
