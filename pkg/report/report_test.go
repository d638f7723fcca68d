package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/tracker"
)

func sampleAudit() *models.AuditResult {
	return &models.AuditResult{
		URL:      "https://example.com",
		Score:    2,
		MaxScore: 4,
		Checks: []models.Check{
			{Category: "seo", Name: "Title", OK: true, Value: "Example"},
			{Category: "seo", Name: "Meta description", OK: false, Hint: "Add meta description (under 160 chars)"},
			{Category: "tech", Name: "HTTPS", OK: true},
			{Category: "geo", Name: "llms.txt", OK: false, Hint: "Add llms.txt for AI crawlers"},
		},
	}
}

func TestAuditRendersScoreAndIcons(t *testing.T) {
	out := Audit(sampleAudit())

	assert.Contains(t, out, "SEO+GEO AUDIT — https://example.com")
	assert.Contains(t, out, "Score: 2/4 (50%)")
	assert.Contains(t, out, "--- SEO Basics ---")
	assert.Contains(t, out, "--- GEO (AI Optimization) ---")
	assert.Contains(t, out, "+ Title")
	assert.Contains(t, out, "x Meta description")
	assert.Contains(t, out, "(Add meta description (under 160 chars))")
	assert.NotContains(t, out, "(Example)", "passing checks never show a hint")
}

func TestAuditActionItemsNumberFailingHints(t *testing.T) {
	out := Audit(sampleAudit())

	require.Contains(t, out, "--- Action Items ---")
	assert.Contains(t, out, "1. Add meta description (under 160 chars)")
	assert.Contains(t, out, "2. Add llms.txt for AI crawlers")
}

func TestAuditCategoryOrderIsStable(t *testing.T) {
	out := Audit(sampleAudit())
	seo := strings.Index(out, "--- SEO Basics ---")
	tech := strings.Index(out, "--- Technical ---")
	geo := strings.Index(out, "--- GEO (AI Optimization) ---")
	assert.True(t, seo < tech && tech < geo, "seo before tech before geo")
}

func TestContentReadabilityBands(t *testing.T) {
	assert.Equal(t, "easy", fleschBand(65))
	assert.Equal(t, "easy", fleschBand(60))
	assert.Equal(t, "standard", fleschBand(45))
	assert.Equal(t, "standard", fleschBand(30))
	assert.Equal(t, "hard", fleschBand(20))

	out := Content(&models.ContentResult{
		WordCount: 100,
		Lang:      "en",
		Readability: models.Readability{
			FleschEase: 65, FleschGrade: 8.1, GunningFog: 9.0, ReadingTimeSec: 45,
		},
	})
	assert.Contains(t, out, "Flesch 65.0 (easy)")
}

func TestIssuesTable(t *testing.T) {
	state := &models.IssuesFile{}
	issues := tracker.UpdateIssues(state, "blog", []models.Check{
		{Name: "HTTPS", Hint: "Serve over HTTPS"},
		{Name: "Favicon"},
	}, time.Now())

	out := Issues("blog", issues)
	assert.Contains(t, out, "--- Issues: blog ---")
	assert.Contains(t, out, "HTTPS")
	assert.Contains(t, out, "New")
	assert.Contains(t, out, "1. Serve over HTTPS")
}

func TestIssuesEmpty(t *testing.T) {
	out := Issues("blog", nil)
	assert.Contains(t, out, "No open issues.")
}

func TestMonitorDiff(t *testing.T) {
	diff := &tracker.SnapshotDiff{
		Changed: []tracker.QueryChange{
			{Query: "golang seo", PrevPosition: 8.0, CurrPosition: 4.0, Delta: 4.0, Impressions: 900},
		},
		New: []tracker.QueryChange{
			{Query: "seo audit tool", CurrPosition: 12.0, Impressions: 300},
		},
	}

	out := MonitorDiff("blog", diff, 3.0)
	assert.Contains(t, out, "threshold 3.0")
	assert.Contains(t, out, "up   golang seo")
	assert.Contains(t, out, "8.0 -> 4.0 (+4.0)")
	assert.Contains(t, out, "new  seo audit tool")
}

func TestMonitorDiffEmpty(t *testing.T) {
	out := MonitorDiff("blog", &tracker.SnapshotDiff{}, 3.0)
	assert.Contains(t, out, "No significant changes.")
}

func TestCompetitorsTable(t *testing.T) {
	out := Competitors([]models.CompetitorPage{
		{Domain: "a.com", WordCount: 1200, HasFAQ: true, OGImage: true, H1: "Guide",
			SchemaTypes: []string{"Article", "FAQPage"}},
		{Domain: "b.com", Err: true},
	})

	assert.Contains(t, out, "a.com")
	assert.Contains(t, out, "Article,FAQPage")
	assert.Contains(t, out, "(unreachable)")
}
