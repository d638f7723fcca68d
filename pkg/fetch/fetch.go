package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent is sent on every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (compatible; seosmith/1.0)"

	// PageTimeout bounds a full page fetch.
	PageTimeout = 15 * time.Second

	// ProbeTimeout bounds existence probes (robots.txt, llms.txt, locale paths).
	ProbeTimeout = 10 * time.Second

	// HeadTimeout bounds link HEAD checks.
	HeadTimeout = 5 * time.Second
)

// Result is the outcome of a successful HTTP exchange.
type Result struct {
	Body   string
	Status int
}

// Client issues sequential, fixed-timeout HTTP requests with a stable user
// agent. Failures never panic and never retry; callers decide whether a
// failed fetch is fatal for their unit of work.
type Client struct {
	http        *http.Client
	userAgent   string
	pageTimeout time.Duration
	headTimeout time.Duration
}

// New returns a Client with the default user agent.
func New() *Client {
	return NewWithUserAgent(DefaultUserAgent)
}

// NewWithUserAgent returns a Client sending the given user agent.
func NewWithUserAgent(ua string) *Client {
	return NewWithTimeouts(ua, PageTimeout, HeadTimeout)
}

// NewWithTimeouts returns a Client with explicit page-fetch and link-check
// timeouts. Zero durations fall back to the package defaults.
func NewWithTimeouts(ua string, pageTimeout, headTimeout time.Duration) *Client {
	if pageTimeout <= 0 {
		pageTimeout = PageTimeout
	}
	if headTimeout <= 0 {
		headTimeout = HeadTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &Client{
		http:        &http.Client{Transport: transport},
		userAgent:   ua,
		pageTimeout: pageTimeout,
		headTimeout: headTimeout,
	}
}

// Get fetches a page with the client's page timeout.
func (c *Client) Get(url string) (*Result, error) {
	return c.GetTimeout(url, c.pageTimeout)
}

// GetTimeout fetches a URL with an explicit timeout. Any status code is
// returned as a Result; only transport failures produce an error.
func (c *Client) GetTimeout(url string, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return &Result{Body: string(body), Status: resp.StatusCode}, nil
}

// Exists probes a URL with a GET; a URL exists iff it answers HTTP 200.
// The status code is 0 when the request failed outright.
func (c *Client) Exists(url string) (bool, int) {
	res, err := c.GetTimeout(url, ProbeTimeout)
	if err != nil {
		return false, 0
	}
	return res.Status == http.StatusOK, res.Status
}

// Head issues a HEAD request with the client's link-check timeout, following
// redirects, and returns the final status code.
func (c *Client) Head(url string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.headTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build HEAD for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("head %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
