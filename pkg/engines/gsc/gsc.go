// Package gsc is a Google Search Console client covering site management,
// sitemap submission, search analytics and URL inspection.
package gsc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/engines/googleauth"
)

const (
	webmastersBase = "https://www.googleapis.com/webmasters/v3"
	inspectionBase = "https://searchconsole.googleapis.com/v1"
	requestTimeout = 30 * time.Second
	analyticsRows  = 25
)

// Client talks to the Search Console APIs. The verified-site list is fetched
// once per client and reused for property resolution within a command run.
type Client struct {
	http           *http.Client
	webmastersBase string
	inspectionBase string

	sites    []Site
	resolved map[string]string
}

// New builds a Client from a service-account key file.
func New(ctx context.Context, serviceAccountFile string) (*Client, error) {
	hc, err := googleauth.Client(ctx, serviceAccountFile, googleauth.ScopeWebmasters)
	if err != nil {
		return nil, err
	}
	hc.Timeout = requestTimeout
	return &Client{
		http:           hc,
		webmastersBase: webmastersBase,
		inspectionBase: inspectionBase,
		resolved:       map[string]string{},
	}, nil
}

// Site is one verified Search Console property.
type Site struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel"`
}

// Sitemap is one submitted sitemap with its processing counters.
type Sitemap struct {
	Path          string `json:"path"`
	LastSubmitted string `json:"lastSubmitted"`
	IsPending     bool   `json:"isPending"`
	Errors        string `json:"errors"`
	Warnings      string `json:"warnings"`
}

// IndexStatus is the indexing state of one inspected URL.
type IndexStatus struct {
	CoverageState   string `json:"coverageState"`
	RobotsTxtState  string `json:"robotsTxtState"`
	IndexingState   string `json:"indexingState"`
	LastCrawlTime   string `json:"lastCrawlTime"`
	PageFetchState  string `json:"pageFetchState"`
	GoogleCanonical string `json:"googleCanonical"`
}

// InspectionResult is the payload of a URL inspection.
type InspectionResult struct {
	IndexStatusResult IndexStatus `json:"indexStatusResult"`
	InspectionLink    string      `json:"inspectionResultLink"`
}

// ListSites returns the verified properties, memoized per client.
func (c *Client) ListSites() ([]Site, error) {
	if c.sites != nil {
		return c.sites, nil
	}
	var out struct {
		SiteEntry []Site `json:"siteEntry"`
	}
	if err := c.do(http.MethodGet, c.webmastersBase+"/sites", nil, &out); err != nil {
		return nil, err
	}
	c.sites = out.SiteEntry
	return c.sites, nil
}

// AddSite registers a property.
func (c *Client) AddSite(siteURL string) error {
	c.sites = nil
	return c.do(http.MethodPut, c.webmastersBase+"/sites/"+url.PathEscape(siteURL), nil, nil)
}

// SubmitSitemap submits a sitemap for a property.
func (c *Client) SubmitSitemap(siteURL, sitemapURL string) error {
	path := c.webmastersBase + "/sites/" + url.PathEscape(siteURL) + "/sitemaps/" + url.PathEscape(sitemapURL)
	return c.do(http.MethodPut, path, nil, nil)
}

// ListSitemaps returns the submitted sitemaps of a property.
func (c *Client) ListSitemaps(siteURL string) ([]Sitemap, error) {
	var out struct {
		Sitemap []Sitemap `json:"sitemap"`
	}
	path := c.webmastersBase + "/sites/" + url.PathEscape(siteURL) + "/sitemaps"
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Sitemap, nil
}

// SearchAnalytics queries the search analytics rows of a property over an
// inclusive date range, grouped by the given dimensions (default query).
func (c *Client) SearchAnalytics(siteURL, startDate, endDate string, dimensions []string) ([]models.SearchRow, error) {
	if len(dimensions) == 0 {
		dimensions = []string{"query"}
	}
	body := map[string]any{
		"startDate":  startDate,
		"endDate":    endDate,
		"dimensions": dimensions,
		"rowLimit":   analyticsRows,
	}
	var out struct {
		Rows []models.SearchRow `json:"rows"`
	}
	path := c.webmastersBase + "/sites/" + url.PathEscape(siteURL) + "/searchAnalytics/query"
	if err := c.do(http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// InspectURL returns the index status of a page within a property.
func (c *Client) InspectURL(siteURL, pageURL string) (*InspectionResult, error) {
	body := map[string]any{"inspectionUrl": pageURL, "siteUrl": siteURL}
	var out struct {
		InspectionResult InspectionResult `json:"inspectionResult"`
	}
	if err := c.do(http.MethodPost, c.inspectionBase+"/urlInspection/index:inspect", body, &out); err != nil {
		return nil, err
	}
	return &out.InspectionResult, nil
}

// ResolveProperty maps a page or site URL onto the verified property that
// covers it, trying the URL-prefix forms first and the sc-domain forms
// last. Resolutions are memoized on the client.
func (c *Client) ResolveProperty(siteURL string) (string, error) {
	if prop, ok := c.resolved[siteURL]; ok {
		return prop, nil
	}
	sites, err := c.ListSites()
	if err != nil {
		return "", err
	}
	verified := make(map[string]bool, len(sites))
	for _, s := range sites {
		verified[s.SiteURL] = true
	}

	for _, candidate := range propertyCandidates(siteURL) {
		if verified[candidate] {
			c.resolved[siteURL] = candidate
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no verified property matches %s", siteURL)
}

// propertyCandidates lists the property identifiers a URL could be verified
// under, most specific first.
func propertyCandidates(siteURL string) []string {
	candidates := []string{strings.TrimRight(siteURL, "/") + "/", siteURL}
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return candidates
	}
	host := u.Hostname()
	candidates = append(candidates, "sc-domain:"+host)
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && etld != host {
		candidates = append(candidates, "sc-domain:"+etld)
	}
	return candidates
}

func (c *Client) do(method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("search console request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("search console %s: HTTP %d: %s", rawURL, resp.StatusCode, snippet(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
