package cloudflare

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphqlServer(t *testing.T, respond func(query string) any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(respond(body.Query))
	}))
	t.Cleanup(srv.Close)

	c := New("token")
	c.graphqlURL = srv.URL
	c.zonesURL = srv.URL + "/zones"
	return c
}

func TestZoneCountriesAggregatesAcrossDays(t *testing.T) {
	c := graphqlServer(t, func(string) any {
		return map[string]any{"data": map[string]any{"viewer": map[string]any{"zones": []any{
			map[string]any{"httpRequests1dGroups": []any{
				map[string]any{"sum": map[string]any{"countryMap": []any{
					map[string]any{"clientCountryName": "US", "requests": 100},
					map[string]any{"clientCountryName": "DE", "requests": 40},
				}}},
				map[string]any{"sum": map[string]any{"countryMap": []any{
					map[string]any{"clientCountryName": "US", "requests": 60},
				}}},
			}},
		}}}}
	})

	counts, err := c.ZoneCountries("zone1", "2026-08-01", "2026-08-02")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, CountryCount{Country: "US", Requests: 160}, counts[0])
	assert.Equal(t, CountryCount{Country: "DE", Requests: 40}, counts[1])
}

func TestGraphQLErrorsSurface(t *testing.T) {
	c := graphqlServer(t, func(string) any {
		return map[string]any{
			"data":   nil,
			"errors": []any{map[string]any{"message": "zone not authorized"}},
		}
	})

	_, err := c.ZoneAnalytics("zone1", "2026-08-01", "2026-08-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zone not authorized")
}

func TestBotHumanSplitFallsBackToEyeball(t *testing.T) {
	c := graphqlServer(t, func(query string) any {
		if strings.Contains(query, "botManagementDecision") {
			return map[string]any{
				"errors": []any{map[string]any{"message": "field not available on this plan"}},
			}
		}
		return map[string]any{"data": map[string]any{"viewer": map[string]any{"zones": []any{
			map[string]any{
				"total":   []any{map[string]any{"count": 1000}},
				"eyeball": []any{map[string]any{"count": 700}},
			},
		}}}}
	})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	split, err := c.BotHumanSplit("zone1", from, to)
	require.NoError(t, err)

	assert.Equal(t, "eyeball", split.Method)
	assert.Equal(t, int64(1400), split.Human, "two 24h slices summed")
	assert.Equal(t, int64(600), split.Bot)
	assert.Equal(t, int64(2000), split.Total)
}

func TestListZones(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"result": []any{
			map[string]any{"id": "z1", "name": "example.com", "status": "active",
				"plan": map[string]any{"name": "Pro"}},
			map[string]any{"id": "z2", "name": "other.net", "status": "active"},
		}})
	}))
	defer srv.Close()

	c := New("token")
	c.zonesURL = srv.URL

	zones, err := c.ListZones()
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "Pro", zones[0].Plan)
	assert.Equal(t, "Free", zones[1].Plan, "missing plan defaults to Free")
}
