package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

func TestLoadAbsentFilesYieldEmptyState(t *testing.T) {
	s := NewAt(t.TempDir())

	monitor, err := s.LoadMonitor()
	require.NoError(t, err)
	assert.Empty(t, monitor.LastCheck)
	assert.NotNil(t, monitor.Sites)

	issues, err := s.LoadIssues()
	require.NoError(t, err)
	assert.NotNil(t, issues.Issues)
}

func TestMonitorRoundTrip(t *testing.T) {
	s := NewAt(t.TempDir())

	state := &models.MonitorFile{
		LastCheck: Timestamp(),
		Sites: map[string]models.SiteSnapshot{
			"mysite": {Queries: map[string]models.QueryStats{
				"seo tools": {Clicks: 12, Impressions: 340, Position: 4.7},
			}},
		},
	}
	require.NoError(t, s.SaveMonitor(state))

	got, err := s.LoadMonitor()
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestIssuesRoundTrip(t *testing.T) {
	s := NewAt(t.TempDir())

	state := &models.IssuesFile{
		LastCheck: "2026-08-20T10:00:00",
		Issues: map[string]models.Issue{
			"mysite|Title": {Status: "open", FirstSeen: "2026-08-01T09:00:00", LastSeen: "2026-08-20T10:00:00"},
		},
	}
	require.NoError(t, s.SaveIssues(state))

	got, err := s.LoadIssues()
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestTimestampFormat(t *testing.T) {
	ts := Timestamp()
	parsed, err := ParseTimestamp(ts)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, 5*time.Second)
}
