// Package ga reads Google Analytics 4 reports over the Data API. Rows come
// back as ordered dimension/metric maps so the report layer can print them
// without knowing each report's shape.
package ga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amosWeiskopf/seosmith/pkg/engines/googleauth"
)

const (
	defaultDataBase  = "https://analyticsdata.googleapis.com/v1beta"
	defaultAdminBase = "https://analyticsadmin.googleapis.com/v1beta"
)

// Client runs GA4 reports for one service account.
type Client struct {
	http      *http.Client
	dataBase  string
	adminBase string
}

// New builds a Client from a service-account key file.
func New(ctx context.Context, serviceAccountFile string) (*Client, error) {
	hc, err := googleauth.Client(ctx, serviceAccountFile, googleauth.ScopeAnalytics)
	if err != nil {
		return nil, err
	}
	hc.Timeout = 60 * time.Second
	return &Client{http: hc, dataBase: defaultDataBase, adminBase: defaultAdminBase}, nil
}

// Property is one GA4 property visible to the service account.
type Property struct {
	Account    string
	Property   string
	PropertyID string
}

// ListProperties walks the account summaries of the admin API.
func (c *Client) ListProperties() ([]Property, error) {
	var out struct {
		AccountSummaries []struct {
			DisplayName       string `json:"displayName"`
			PropertySummaries []struct {
				Property    string `json:"property"`
				DisplayName string `json:"displayName"`
			} `json:"propertySummaries"`
		} `json:"accountSummaries"`
	}
	if err := c.call(http.MethodGet, c.adminBase+"/accountSummaries", nil, &out); err != nil {
		return nil, err
	}

	var props []Property
	for _, acc := range out.AccountSummaries {
		for _, p := range acc.PropertySummaries {
			props = append(props, Property{
				Account:    acc.DisplayName,
				Property:   p.DisplayName,
				PropertyID: strings.TrimPrefix(p.Property, "properties/"),
			})
		}
	}
	return props, nil
}

// Overview is the headline metrics of a property over a day window.
type Overview struct {
	Sessions        int
	Users           int
	NewUsers        int
	Pageviews       int
	AvgDuration     float64
	BounceRate      float64
	EngagedSessions int
}

// GetOverview returns sessions, users, pageviews, bounce and duration.
func (c *Client) GetOverview(propertyID string, days int, hostname string) (*Overview, error) {
	resp, err := c.runReport(propertyID, reportRequest{
		DateRanges: dayWindow(days),
		Metrics: metrics("sessions", "totalUsers", "newUsers", "screenPageViews",
			"averageSessionDuration", "bounceRate", "engagedSessions"),
		DimensionFilter: hostFilter(hostname),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return &Overview{}, nil
	}
	mv := resp.Rows[0].MetricValues
	if len(mv) < 7 {
		return nil, fmt.Errorf("ga overview: expected 7 metrics, got %d", len(mv))
	}
	return &Overview{
		Sessions:        atoi(mv[0].Value),
		Users:           atoi(mv[1].Value),
		NewUsers:        atoi(mv[2].Value),
		Pageviews:       atoi(mv[3].Value),
		AvgDuration:     atof(mv[4].Value),
		BounceRate:      atof(mv[5].Value),
		EngagedSessions: atoi(mv[6].Value),
	}, nil
}

// GetTopPages returns top pages by pageviews.
func (c *Client) GetTopPages(propertyID string, days, limit int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("pagePath"),
		Metrics:         metrics("screenPageViews", "totalUsers", "averageSessionDuration", "bounceRate"),
		OrderBys:        orderByMetric("screenPageViews"),
		Limit:           limit,
		DimensionFilter: hostFilter(hostname),
	})
}

// GetChannels returns traffic grouped by default channel group.
func (c *Client) GetChannels(propertyID string, days int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("sessionDefaultChannelGroup"),
		Metrics:         metrics("sessions", "totalUsers", "engagedSessions", "screenPageViews"),
		OrderBys:        orderByMetric("sessions"),
		DimensionFilter: hostFilter(hostname),
	})
}

// GetCountries returns top countries by users.
func (c *Client) GetCountries(propertyID string, days, limit int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("country"),
		Metrics:         metrics("totalUsers", "sessions"),
		OrderBys:        orderByMetric("totalUsers"),
		Limit:           limit,
		DimensionFilter: hostFilter(hostname),
	})
}

// GetSources returns top source/medium pairs by sessions.
func (c *Client) GetSources(propertyID string, days, limit int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("sessionSourceMedium"),
		Metrics:         metrics("sessions", "totalUsers", "engagedSessions"),
		OrderBys:        orderByMetric("sessions"),
		Limit:           limit,
		DimensionFilter: hostFilter(hostname),
	})
}

// GetDaily returns day-by-day sessions, users and pageviews.
func (c *Client) GetDaily(propertyID string, days int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("date"),
		Metrics:         metrics("sessions", "totalUsers", "screenPageViews"),
		OrderBys:        []orderBy{{Dimension: &dimensionOrder{DimensionName: "date"}}},
		DimensionFilter: hostFilter(hostname),
	})
}

// GetLandingPages returns top entry pages by sessions.
func (c *Client) GetLandingPages(propertyID string, days, limit int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("landingPage"),
		Metrics:         metrics("sessions", "engagedSessions", "bounceRate"),
		OrderBys:        orderByMetric("sessions"),
		Limit:           limit,
		DimensionFilter: hostFilter(hostname),
	})
}

// GetNewVsReturning splits traffic by the newVsReturning dimension.
func (c *Client) GetNewVsReturning(propertyID string, days int, hostname string) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges:      dayWindow(days),
		Dimensions:      dimensions("newVsReturning"),
		Metrics:         metrics("totalUsers", "sessions"),
		OrderBys:        orderByMetric("totalUsers"),
		DimensionFilter: hostFilter(hostname),
	})
}

// GetHostnames returns all hostnames with traffic in the property.
func (c *Client) GetHostnames(propertyID string, days int) ([]Row, error) {
	return c.rows(propertyID, reportRequest{
		DateRanges: dayWindow(days),
		Dimensions: dimensions("hostName"),
		Metrics:    metrics("sessions", "totalUsers", "screenPageViews"),
		OrderBys:   orderByMetric("sessions"),
	})
}

// GetRealtime returns the number of active users right now.
func (c *Client) GetRealtime(propertyID string) (int, error) {
	body := reportRequest{Metrics: metrics("activeUsers")}
	var resp reportResponse
	url := fmt.Sprintf("%s/properties/%s:runRealtimeReport", c.dataBase, propertyID)
	if err := c.call(http.MethodPost, url, body, &resp); err != nil {
		return 0, err
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].MetricValues) == 0 {
		return 0, nil
	}
	return atoi(resp.Rows[0].MetricValues[0].Value), nil
}

// Row is one report row as ordered name/value pairs: dimensions first,
// then metrics, keyed by the API's header names.
type Row struct {
	Dimensions map[string]string
	Metrics    map[string]string
}

// Get returns the named dimension or metric value.
func (r Row) Get(name string) string {
	if v, ok := r.Dimensions[name]; ok {
		return v
	}
	return r.Metrics[name]
}

// GetInt returns a metric as an integer, 0 when absent or non-numeric.
func (r Row) GetInt(name string) int {
	return atoi(r.Get(name))
}

// GetFloat returns a metric as a float, 0 when absent or non-numeric.
func (r Row) GetFloat(name string) float64 {
	return atof(r.Get(name))
}

// Wire types for the Data API.

type reportRequest struct {
	DateRanges      []dateRange `json:"dateRanges,omitempty"`
	Dimensions      []dimension `json:"dimensions,omitempty"`
	Metrics         []metric    `json:"metrics,omitempty"`
	OrderBys        []orderBy   `json:"orderBys,omitempty"`
	Limit           int         `json:"limit,omitempty"`
	DimensionFilter *filterExpr `json:"dimensionFilter,omitempty"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type dimension struct {
	Name string `json:"name"`
}

type metric struct {
	Name string `json:"name"`
}

type orderBy struct {
	Metric    *metricOrder    `json:"metric,omitempty"`
	Dimension *dimensionOrder `json:"dimension,omitempty"`
	Desc      bool            `json:"desc,omitempty"`
}

type metricOrder struct {
	MetricName string `json:"metricName"`
}

type dimensionOrder struct {
	DimensionName string `json:"dimensionName"`
}

type filterExpr struct {
	Filter *fieldFilter `json:"filter,omitempty"`
}

type fieldFilter struct {
	FieldName    string        `json:"fieldName"`
	StringFilter *stringFilter `json:"stringFilter,omitempty"`
}

type stringFilter struct {
	MatchType string `json:"matchType"`
	Value     string `json:"value"`
}

type headerName struct {
	Name string `json:"name"`
}

type wireValue struct {
	Value string `json:"value"`
}

type wireRow struct {
	DimensionValues []wireValue `json:"dimensionValues"`
	MetricValues    []wireValue `json:"metricValues"`
}

type reportResponse struct {
	DimensionHeaders []headerName `json:"dimensionHeaders"`
	MetricHeaders    []headerName `json:"metricHeaders"`
	Rows             []wireRow    `json:"rows"`
}

func dayWindow(days int) []dateRange {
	return []dateRange{{StartDate: fmt.Sprintf("%ddaysAgo", days), EndDate: "yesterday"}}
}

func dimensions(names ...string) []dimension {
	ds := make([]dimension, len(names))
	for i, n := range names {
		ds[i] = dimension{Name: n}
	}
	return ds
}

func metrics(names ...string) []metric {
	ms := make([]metric, len(names))
	for i, n := range names {
		ms[i] = metric{Name: n}
	}
	return ms
}

func orderByMetric(name string) []orderBy {
	return []orderBy{{Metric: &metricOrder{MetricName: name}, Desc: true}}
}

func hostFilter(hostname string) *filterExpr {
	if hostname == "" {
		return nil
	}
	return &filterExpr{Filter: &fieldFilter{
		FieldName:    "hostName",
		StringFilter: &stringFilter{MatchType: "EXACT", Value: hostname},
	}}
}

func (c *Client) runReport(propertyID string, body reportRequest) (*reportResponse, error) {
	var resp reportResponse
	url := fmt.Sprintf("%s/properties/%s:runReport", c.dataBase, propertyID)
	if err := c.call(http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// rows runs a report and zips headers with values into Row maps.
func (c *Client) rows(propertyID string, body reportRequest) ([]Row, error) {
	resp, err := c.runReport(propertyID, body)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(resp.Rows))
	for _, wr := range resp.Rows {
		row := Row{Dimensions: map[string]string{}, Metrics: map[string]string{}}
		for i, dv := range wr.DimensionValues {
			if i < len(resp.DimensionHeaders) {
				row.Dimensions[resp.DimensionHeaders[i].Name] = dv.Value
			}
		}
		for i, mv := range wr.MetricValues {
			if i < len(resp.MetricHeaders) {
				row.Metrics[resp.MetricHeaders[i].Name] = mv.Value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) call(method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ga: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("ga: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ga request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ga: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s := strings.TrimSpace(string(data))
		if len(s) > 200 {
			s = s[:200]
		}
		return fmt.Errorf("ga %s: HTTP %d: %s", url, resp.StatusCode, s)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("ga: decode response: %w", err)
		}
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
