// Package cloudflare reads zone traffic analytics over the Cloudflare
// GraphQL API: daily request groups, error breakdowns, bot/human split and
// AI crawler activity.
package cloudflare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	defaultGraphQLURL = "https://api.cloudflare.com/client/v4/graphql"
	defaultZonesURL   = "https://api.cloudflare.com/client/v4/zones"
)

// Crawler is one known AI crawler: the user-agent substring Cloudflare is
// queried for and the display label.
type Crawler struct {
	UAPattern string
	Label     string
}

// AICrawlers lists the crawl bots operated by AI vendors, in query order.
var AICrawlers = []Crawler{
	{"GPTBot", "OpenAI GPTBot"},
	{"ChatGPT-User", "ChatGPT User"},
	{"OAI-SearchBot", "OpenAI Search"},
	{"ClaudeBot", "Anthropic Claude"},
	{"Claude-SearchBot", "Claude Search"},
	{"Claude-User", "Claude User"},
	{"Google-CloudVertexBot", "Google Vertex"},
	{"Googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"Bytespider", "ByteDance"},
	{"CCBot", "Common Crawl"},
	{"meta-externalagent", "Meta Agent"},
	{"meta-externalfetcher", "Meta Fetcher"},
	{"FacebookBot", "FacebookBot"},
	{"Applebot", "Applebot"},
	{"Amazonbot", "Amazonbot"},
	{"DuckAssistBot", "DuckDuckGo"},
	{"PerplexityBot", "Perplexity"},
	{"Perplexity-User", "Perplexity User"},
	{"MistralAI-User", "Mistral AI"},
}

// AIReferrers lists the AI assistant domains that send referral traffic.
var AIReferrers = []string{
	"chatgpt.com",
	"chat.openai.com",
	"perplexity.ai",
	"claude.ai",
	"gemini.google.com",
	"copilot.microsoft.com",
	"you.com",
}

// Client calls the Cloudflare REST and GraphQL APIs with an API token.
type Client struct {
	http       *http.Client
	graphqlURL string
	zonesURL   string
	token      string
}

// New returns a Client using the given API token.
func New(token string) *Client {
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		graphqlURL: defaultGraphQLURL,
		zonesURL:   defaultZonesURL,
		token:      token,
	}
}

// Zone is one Cloudflare zone (site).
type Zone struct {
	ID     string
	Name   string
	Status string
	Plan   string
}

// ListZones returns the token's zones with plan names.
func (c *Client) ListZones() ([]Zone, error) {
	req, err := http.NewRequest(http.MethodGet, c.zonesURL+"?per_page=50", nil)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudflare zones: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudflare zones: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudflare zones: HTTP %d", resp.StatusCode)
	}

	var out struct {
		Result []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Status string `json:"status"`
			Plan   struct {
				Name string `json:"name"`
			} `json:"plan"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cloudflare zones: decode response: %w", err)
	}

	zones := make([]Zone, 0, len(out.Result))
	for _, z := range out.Result {
		plan := z.Plan.Name
		if plan == "" {
			plan = "Free"
		}
		zones = append(zones, Zone{ID: z.ID, Name: z.Name, Status: z.Status, Plan: plan})
	}
	return zones, nil
}

// DayGroup is one day of aggregated HTTP traffic.
type DayGroup struct {
	Date      string
	Requests  int64
	PageViews int64
	Bytes     int64
	Threats   int64
	Uniques   int64
}

// ZoneAnalytics returns daily traffic totals for a zone over a date range
// (YYYY-MM-DD, inclusive).
func (c *Client) ZoneAnalytics(zoneID, dateFrom, dateTo string) ([]DayGroup, error) {
	query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      httpRequests1dGroups(
	        limit: 30
	        filter: {date_geq: "%s", date_leq: "%s"}
	        orderBy: [date_ASC]
	      ) {
	        dimensions { date }
	        sum { requests pageViews bytes threats }
	        uniq { uniques }
	      }
	    }
	  }
	}`, zoneID, dateFrom, dateTo)

	var out struct {
		Viewer struct {
			Zones []struct {
				Groups []struct {
					Dimensions struct {
						Date string `json:"date"`
					} `json:"dimensions"`
					Sum struct {
						Requests  int64 `json:"requests"`
						PageViews int64 `json:"pageViews"`
						Bytes     int64 `json:"bytes"`
						Threats   int64 `json:"threats"`
					} `json:"sum"`
					Uniq struct {
						Uniques int64 `json:"uniques"`
					} `json:"uniq"`
				} `json:"httpRequests1dGroups"`
			} `json:"zones"`
		} `json:"viewer"`
	}
	if err := c.graphql(query, 30*time.Second, &out); err != nil {
		return nil, err
	}
	if len(out.Viewer.Zones) == 0 {
		return nil, nil
	}

	groups := make([]DayGroup, 0, len(out.Viewer.Zones[0].Groups))
	for _, g := range out.Viewer.Zones[0].Groups {
		groups = append(groups, DayGroup{
			Date:      g.Dimensions.Date,
			Requests:  g.Sum.Requests,
			PageViews: g.Sum.PageViews,
			Bytes:     g.Sum.Bytes,
			Threats:   g.Sum.Threats,
			Uniques:   g.Uniq.Uniques,
		})
	}
	return groups, nil
}

// StatusCount is one HTTP status code's request total.
type StatusCount struct {
	Status   int
	Requests int64
}

// ZoneErrors returns the status-code breakdown for a zone, aggregated
// across the range and sorted by request count.
func (c *Client) ZoneErrors(zoneID, dateFrom, dateTo string) ([]StatusCount, error) {
	query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      httpRequests1dGroups(
	        limit: 30
	        filter: {date_geq: "%s", date_leq: "%s"}
	        orderBy: [date_ASC]
	      ) {
	        sum {
	          responseStatusMap {
	            edgeResponseStatus
	            requests
	          }
	        }
	      }
	    }
	  }
	}`, zoneID, dateFrom, dateTo)

	var out struct {
		Viewer struct {
			Zones []struct {
				Groups []struct {
					Sum struct {
						ResponseStatusMap []struct {
							EdgeResponseStatus int   `json:"edgeResponseStatus"`
							Requests           int64 `json:"requests"`
						} `json:"responseStatusMap"`
					} `json:"sum"`
				} `json:"httpRequests1dGroups"`
			} `json:"zones"`
		} `json:"viewer"`
	}
	if err := c.graphql(query, 30*time.Second, &out); err != nil {
		return nil, err
	}
	if len(out.Viewer.Zones) == 0 {
		return nil, nil
	}

	totals := map[int]int64{}
	for _, g := range out.Viewer.Zones[0].Groups {
		for _, s := range g.Sum.ResponseStatusMap {
			totals[s.EdgeResponseStatus] += s.Requests
		}
	}
	counts := make([]StatusCount, 0, len(totals))
	for status, requests := range totals {
		counts = append(counts, StatusCount{Status: status, Requests: requests})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Requests != counts[j].Requests {
			return counts[i].Requests > counts[j].Requests
		}
		return counts[i].Status < counts[j].Status
	})
	return counts, nil
}

// CountryCount is one country's request total.
type CountryCount struct {
	Country  string
	Requests int64
}

// ZoneCountries returns top countries by requests, aggregated across days.
func (c *Client) ZoneCountries(zoneID, dateFrom, dateTo string) ([]CountryCount, error) {
	query := fmt.Sprintf(`{
	  viewer {
	    zones(filter: {zoneTag: "%s"}) {
	      httpRequests1dGroups(
	        limit: 30
	        filter: {date_geq: "%s", date_leq: "%s"}
	      ) {
	        sum {
	          countryMap {
	            clientCountryName
	            requests
	          }
	        }
	      }
	    }
	  }
	}`, zoneID, dateFrom, dateTo)

	var out struct {
		Viewer struct {
			Zones []struct {
				Groups []struct {
					Sum struct {
						CountryMap []struct {
							ClientCountryName string `json:"clientCountryName"`
							Requests          int64  `json:"requests"`
						} `json:"countryMap"`
					} `json:"sum"`
				} `json:"httpRequests1dGroups"`
			} `json:"zones"`
		} `json:"viewer"`
	}
	if err := c.graphql(query, 30*time.Second, &out); err != nil {
		return nil, err
	}
	if len(out.Viewer.Zones) == 0 {
		return nil, nil
	}

	totals := map[string]int64{}
	for _, g := range out.Viewer.Zones[0].Groups {
		for _, cm := range g.Sum.CountryMap {
			totals[cm.ClientCountryName] += cm.Requests
		}
	}
	counts := make([]CountryCount, 0, len(totals))
	for country, requests := range totals {
		counts = append(counts, CountryCount{Country: country, Requests: requests})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Requests != counts[j].Requests {
			return counts[i].Requests > counts[j].Requests
		}
		return counts[i].Country < counts[j].Country
	})
	return counts, nil
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql posts a query and decodes the data payload into out. GraphQL
// errors in an otherwise 200 response are surfaced as Go errors.
func (c *Client) graphql(query string, timeout time.Duration, out any) error {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("cloudflare: encode query: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("cloudflare: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	hc := *c.http
	hc.Timeout = timeout
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("cloudflare graphql: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cloudflare graphql: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudflare graphql: HTTP %d", resp.StatusCode)
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("cloudflare graphql: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("cloudflare graphql: %s", strings.Join(messages, "; "))
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("cloudflare graphql: decode data: %w", err)
		}
	}
	return nil
}
