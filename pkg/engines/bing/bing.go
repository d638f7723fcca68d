// Package bing is a Bing Webmaster Tools client. The service speaks a
// JSON-over-GET/POST dialect at api.svc/json and wraps GET payloads in a
// "d" envelope.
package bing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBase = "https://ssl.bing.com/webmaster/api.svc/json"

// Bing caps a single batch submission at 500 URLs (10,000 per day).
const maxBatchURLs = 500

// Client calls the Bing Webmaster API with a fixed API key.
type Client struct {
	http   *http.Client
	base   string
	apiKey string
}

// New returns a Client using the given API key.
func New(apiKey string) *Client {
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		base:   defaultBase,
		apiKey: apiKey,
	}
}

// Site is one registered site.
type Site struct {
	URL        string `json:"Url"`
	IsVerified bool   `json:"IsVerified"`
}

// ListSites returns the sites registered under the API key.
func (c *Client) ListSites() ([]Site, error) {
	var sites []Site
	if err := c.get("GetUserSites", nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// AddSite registers a site.
func (c *Client) AddSite(siteURL string) error {
	return c.post("AddSite", map[string]any{"siteUrl": siteURL})
}

// SubmitSitemap submits a sitemap feed for a site.
func (c *Client) SubmitSitemap(siteURL, sitemapURL string) error {
	return c.post("SubmitFeed", map[string]any{"siteUrl": siteURL, "feedUrl": sitemapURL})
}

// SubmitURLs submits up to 500 URLs in one batch; extra URLs are dropped.
func (c *Client) SubmitURLs(siteURL string, urls []string) (int, error) {
	if len(urls) > maxBatchURLs {
		urls = urls[:maxBatchURLs]
	}
	if err := c.post("SubmitUrlBatch", map[string]any{"siteUrl": siteURL, "urlList": urls}); err != nil {
		return 0, err
	}
	return len(urls), nil
}

// CrawlStat is one day of crawl activity.
type CrawlStat struct {
	Date            string `json:"Date"`
	CrawledPages    int    `json:"CrawledPages"`
	InIndex         int    `json:"InIndex"`
	CrawlErrors     int    `json:"AllOtherCodes"`
	BlockedByRobots int    `json:"BlockedByRobotsTxt"`
}

// CrawlStats returns recent crawl activity for a site.
func (c *Client) CrawlStats(siteURL string) ([]CrawlStat, error) {
	var stats []CrawlStat
	if err := c.get("GetCrawlStats", map[string]string{"siteUrl": siteURL}, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// QueryStat is one search query's traffic for a site.
type QueryStat struct {
	Query       string  `json:"Query"`
	Clicks      int     `json:"Clicks"`
	Impressions int     `json:"Impressions"`
	AvgPosition float64 `json:"AvgImpressionPosition"`
}

// QueryStats returns the top search queries for a site.
func (c *Client) QueryStats(siteURL string) ([]QueryStat, error) {
	var stats []QueryStat
	if err := c.get("GetQueryStats", map[string]string{"siteUrl": siteURL}, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// get issues a GET and unwraps the "d" envelope into out.
func (c *Client) get(endpoint string, params map[string]string, out any) error {
	values := url.Values{"apikey": {c.apiKey}}
	for k, v := range params {
		values.Set(k, v)
	}
	resp, err := c.http.Get(c.base + "/" + endpoint + "?" + values.Encode())
	if err != nil {
		return fmt.Errorf("bing %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bing %s: read response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bing %s: HTTP %d: %s", endpoint, resp.StatusCode, trim(data))
	}

	var envelope struct {
		D json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.D) > 0 {
		return json.Unmarshal(envelope.D, out)
	}
	return json.Unmarshal(data, out)
}

func (c *Client) post(endpoint string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bing %s: encode request: %w", endpoint, err)
	}
	resp, err := c.http.Post(
		c.base+"/"+endpoint+"?apikey="+url.QueryEscape(c.apiKey),
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("bing %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bing %s: HTTP %d: %s", endpoint, resp.StatusCode, trim(data))
	}
	return nil
}

func trim(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
