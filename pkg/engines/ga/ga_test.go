package ga

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := &Client{
		http:      &http.Client{Timeout: 5 * time.Second},
		dataBase:  srv.URL,
		adminBase: srv.URL,
	}
	return c, srv
}

func TestGetOverviewParsesMetrics(t *testing.T) {
	var gotBody reportRequest
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties/12345:runReport", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"rows": []any{map[string]any{
				"metricValues": []any{
					map[string]any{"value": "420"},
					map[string]any{"value": "300"},
					map[string]any{"value": "120"},
					map[string]any{"value": "910"},
					map[string]any{"value": "95.4"},
					map[string]any{"value": "0.42"},
					map[string]any{"value": "260"},
				},
			}},
		})
	}))
	defer srv.Close()

	ov, err := c.GetOverview("12345", 28, "example.com")
	require.NoError(t, err)
	assert.Equal(t, 420, ov.Sessions)
	assert.Equal(t, 910, ov.Pageviews)
	assert.InDelta(t, 0.42, ov.BounceRate, 0.001)

	require.Len(t, gotBody.DateRanges, 1)
	assert.Equal(t, "28daysAgo", gotBody.DateRanges[0].StartDate)
	assert.Equal(t, "yesterday", gotBody.DateRanges[0].EndDate)
	require.NotNil(t, gotBody.DimensionFilter)
	assert.Equal(t, "hostName", gotBody.DimensionFilter.Filter.FieldName)
	assert.Equal(t, "EXACT", gotBody.DimensionFilter.Filter.StringFilter.MatchType)
}

func TestGetOverviewEmptyProperty(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	ov, err := c.GetOverview("12345", 7, "")
	require.NoError(t, err)
	assert.Equal(t, 0, ov.Sessions)
}

func TestRowsZipHeadersWithValues(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"dimensionHeaders": []any{map[string]any{"name": "pagePath"}},
			"metricHeaders": []any{
				map[string]any{"name": "screenPageViews"},
				map[string]any{"name": "totalUsers"},
			},
			"rows": []any{
				map[string]any{
					"dimensionValues": []any{map[string]any{"value": "/blog"}},
					"metricValues": []any{
						map[string]any{"value": "500"},
						map[string]any{"value": "320"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	rows, err := c.GetTopPages("12345", 28, 15, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "/blog", rows[0].Get("pagePath"))
	assert.Equal(t, 500, rows[0].GetInt("screenPageViews"))
	assert.Equal(t, 320, rows[0].GetInt("totalUsers"))
}

func TestGetRealtime(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties/12345:runRealtimeReport", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"rows": []any{map[string]any{
				"metricValues": []any{map[string]any{"value": "17"}},
			}},
		})
	}))
	defer srv.Close()

	active, err := c.GetRealtime("12345")
	require.NoError(t, err)
	assert.Equal(t, 17, active)
}

func TestListProperties(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accountSummaries", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"accountSummaries": []any{map[string]any{
				"displayName": "Acme",
				"propertySummaries": []any{map[string]any{
					"property":    "properties/98765",
					"displayName": "acme.com",
				}},
			}},
		})
	}))
	defer srv.Close()

	props, err := c.ListProperties()
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "98765", props[0].PropertyID)
	assert.Equal(t, "Acme", props[0].Account)
}

func TestErrorCarriesStatusAndBody(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "permission denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := c.GetRealtime("12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
	assert.Contains(t, err.Error(), "permission denied")
}
