// Package yandex is a Yandex Webmaster API v4 client. Hosts are addressed
// by an opaque host id that must be looked up from the verified host list.
package yandex

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

const defaultBase = "https://api.webmaster.yandex.net/v4"

// Client calls the Yandex Webmaster API with an OAuth token.
type Client struct {
	http  *http.Client
	base  string
	token string
}

// New returns a Client using the given OAuth token.
func New(token string) *Client {
	return &Client{
		http:  &http.Client{Timeout: 30 * time.Second},
		base:  defaultBase,
		token: token,
	}
}

// Host is one verified host.
type Host struct {
	HostID         string `json:"host_id"`
	UnicodeHostURL string `json:"unicode_host_url"`
	ASCIIHostURL   string `json:"ascii_host_url"`
	Verified       bool   `json:"verified"`
}

// UserID returns the numeric id of the token's owner.
func (c *Client) UserID() (int64, error) {
	var out struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.get("/user/", nil, &out); err != nil {
		return 0, err
	}
	return out.UserID, nil
}

// ListHosts returns the user's hosts.
func (c *Client) ListHosts(userID int64) ([]Host, error) {
	var out struct {
		Hosts []Host `json:"hosts"`
	}
	if err := c.get(fmt.Sprintf("/user/%d/hosts/", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Hosts, nil
}

// AddHost registers a site for verification.
func (c *Client) AddHost(userID int64, siteURL string) error {
	return c.post(fmt.Sprintf("/user/%d/hosts/", userID), map[string]string{"host_url": siteURL}, nil)
}

// HostID finds the host id for a site URL, comparing both the unicode and
// punycode forms with trailing slashes stripped.
func (c *Client) HostID(userID int64, siteURL string) (string, error) {
	hosts, err := c.ListHosts(userID)
	if err != nil {
		return "", err
	}
	want := strings.TrimRight(siteURL, "/")
	for _, h := range hosts {
		if strings.TrimRight(h.UnicodeHostURL, "/") == want ||
			strings.TrimRight(h.ASCIIHostURL, "/") == want {
			return h.HostID, nil
		}
	}
	return "", fmt.Errorf("no yandex host matches %s", siteURL)
}

// SubmitSitemap adds a user sitemap to a host.
func (c *Client) SubmitSitemap(userID int64, hostID, sitemapURL string) error {
	path := fmt.Sprintf("/user/%d/hosts/%s/user-added-sitemaps/", userID, hostID)
	return c.post(path, map[string]string{"url": sitemapURL}, nil)
}

// Sitemap is one user-added sitemap of a host.
type Sitemap struct {
	SitemapID string `json:"sitemap_id"`
	URL       string `json:"sitemap_url"`
	AddedDate string `json:"added_date"`
}

// ListSitemaps returns the user-added sitemaps of a host.
func (c *Client) ListSitemaps(userID int64, hostID string) ([]Sitemap, error) {
	var out struct {
		Sitemaps []Sitemap `json:"sitemaps"`
	}
	path := fmt.Sprintf("/user/%d/hosts/%s/user-added-sitemaps/", userID, hostID)
	if err := c.get(path, nil, &out); err != nil {
		return nil, err
	}
	return out.Sitemaps, nil
}

// SubmitURLForReindex queues a URL for recrawl.
func (c *Client) SubmitURLForReindex(userID int64, hostID, pageURL string) error {
	path := fmt.Sprintf("/user/%d/hosts/%s/recrawl/queue/", userID, hostID)
	return c.post(path, map[string]string{"url": pageURL}, nil)
}

// ReindexQuota is the remaining daily recrawl allowance of a host.
type ReindexQuota struct {
	DailyQuota int `json:"daily_quota"`
	Remainder  int `json:"quota_remainder"`
}

// GetReindexQuota returns the recrawl quota of a host.
func (c *Client) GetReindexQuota(userID int64, hostID string) (*ReindexQuota, error) {
	var out ReindexQuota
	path := fmt.Sprintf("/user/%d/hosts/%s/recrawl/quota/", userID, hostID)
	if err := c.get(path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IndexingPoint is one day of an indexing history series.
type IndexingPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// IndexingHistory returns the searchable-pages history of a host over a
// date range (YYYY-MM-DD, inclusive).
func (c *Client) IndexingHistory(userID int64, hostID, dateFrom, dateTo string) ([]IndexingPoint, error) {
	var out struct {
		Indicators struct {
			SearchablePages []IndexingPoint `json:"SEARCHABLE"`
		} `json:"indicators"`
	}
	path := fmt.Sprintf("/user/%d/hosts/%s/indexing/history/", userID, hostID)
	params := url.Values{"date_from": {dateFrom}, "date_to": {dateTo}}
	if err := c.get(path, params, &out); err != nil {
		return nil, err
	}
	return out.Indicators.SearchablePages, nil
}

// SearchQuery is one popular search query for a host.
type SearchQuery struct {
	QueryText string `json:"query_text"`
	Count     int    `json:"count"`
}

// SearchQueries returns the popular queries of a host over a date range
// (YYYY-MM-DD, inclusive).
func (c *Client) SearchQueries(userID int64, hostID, dateFrom, dateTo string) ([]SearchQuery, error) {
	var out struct {
		Queries []SearchQuery `json:"queries"`
	}
	path := fmt.Sprintf("/user/%d/hosts/%s/search-queries/popular/", userID, hostID)
	params := url.Values{"date_from": {dateFrom}, "date_to": {dateTo}}
	if err := c.get(path+"?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Queries, nil
}

func (c *Client) get(path string, params url.Values, out any) error {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("yandex: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("yandex: encode request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("yandex: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("yandex %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yandex %s: read response: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s := strings.TrimSpace(string(data))
		if len(s) > 200 {
			s = s[:200]
		}
		return fmt.Errorf("yandex %s: HTTP %d: %s", req.URL.Path, resp.StatusCode, s)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("yandex %s: decode response: %w", req.URL.Path, err)
		}
	}
	return nil
}
