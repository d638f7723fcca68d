// Package report renders audit, issue and monitoring results as plain text
// for terminal output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/tracker"
)

var categoryLabels = map[string]string{
	"seo":    "SEO Basics",
	"og":     "Open Graph / Social",
	"schema": "Structured Data",
	"tech":   "Technical",
	"files":  "Files",
	"geo":    "GEO (AI Optimization)",
	"links":  "Links & Images",
}

// categoryOrder fixes section order regardless of map iteration.
var categoryOrder = []string{"seo", "og", "schema", "tech", "files", "geo", "links"}

// Audit renders a full audit result with per-category checks and a numbered
// action list of failing hints.
func Audit(a *models.AuditResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", 65)

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "  SEO+GEO AUDIT — %s\n", a.URL)
	if a.LocaleURL != "" {
		fmt.Fprintf(&b, "  Content locale: %s\n", a.LocaleURL)
	}
	fmt.Fprintf(&b, "  Score: %d/%d (%d%%)\n", a.Score, a.MaxScore, a.Percent())
	fmt.Fprintf(&b, "%s\n", rule)

	byCategory := map[string][]models.Check{}
	for _, c := range a.Checks {
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}
	for _, cat := range orderedCategories(byCategory) {
		label := categoryLabels[cat]
		if label == "" {
			label = cat
		}
		fmt.Fprintf(&b, "\n  --- %s ---\n", label)
		for _, c := range byCategory[cat] {
			icon := "x"
			if c.OK {
				icon = "+"
			}
			val := ""
			if c.Value != "" {
				val = "  " + c.Value
			}
			hint := ""
			if c.Hint != "" && !c.OK {
				hint = fmt.Sprintf("  (%s)", c.Hint)
			}
			fmt.Fprintf(&b, "  %s %-25s%s%s\n", icon, c.Name, val, hint)
		}
	}

	if speed := Speed(a.Speed); speed != "" {
		b.WriteString(speed)
	}
	if a.Content != nil {
		b.WriteString(Content(a.Content))
	}

	var failing []models.Check
	for _, c := range a.Checks {
		if !c.OK && c.Hint != "" {
			failing = append(failing, c)
		}
	}
	if len(failing) > 0 {
		fmt.Fprintf(&b, "\n  --- Action Items ---\n")
		for i, c := range failing {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, c.Hint)
		}
	}

	b.WriteString("\n")
	return b.String()
}

// orderedCategories returns the present categories in display order, with
// unknown ones appended alphabetically.
func orderedCategories(byCategory map[string][]models.Check) []string {
	var cats []string
	seen := map[string]bool{}
	for _, cat := range categoryOrder {
		if _, ok := byCategory[cat]; ok {
			cats = append(cats, cat)
			seen[cat] = true
		}
	}
	var rest []string
	for cat := range byCategory {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	return append(cats, rest...)
}

// Speed renders PageSpeed scores and Core Web Vitals per strategy.
func Speed(speed map[string]models.StrategySpeed) string {
	if len(speed) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n  --- PageSpeed ---\n")
	for _, strategy := range []string{"mobile", "desktop"} {
		s, ok := speed[strategy]
		if !ok || len(s.Scores) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s:", strategy)
		for _, cat := range []string{"performance", "seo", "accessibility"} {
			if v, ok := s.Scores[cat]; ok {
				fmt.Fprintf(&b, "  %s=%d", cat, v)
			}
		}
		b.WriteString("\n")
		if len(s.CWV) > 0 {
			fmt.Fprintf(&b, "    CWV:")
			for _, label := range []string{"LCP", "CLS", "INP", "FCP"} {
				if v, ok := s.CWV[label]; ok {
					fmt.Fprintf(&b, "  %s=%d (%s)", label, v.Value, v.Rating)
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Content renders the keyword and readability analysis of a page.
func Content(c *models.ContentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  --- Content (%d words, lang=%s) ---\n", c.WordCount, c.Lang)

	if len(c.Keywords) > 0 {
		fmt.Fprintf(&b, "  Top keywords:\n")
		for i, kw := range c.Keywords {
			if i >= 10 {
				break
			}
			var marks []string
			if kw.InTitle {
				marks = append(marks, "title")
			}
			if kw.InH1 {
				marks = append(marks, "h1")
			}
			if kw.InDesc {
				marks = append(marks, "desc")
			}
			placement := ""
			if len(marks) > 0 {
				placement = "  [" + strings.Join(marks, ",") + "]"
			}
			fmt.Fprintf(&b, "    %-30s%s\n", kw.Keyword, placement)
		}
	}

	if len(c.Density) > 0 {
		fmt.Fprintf(&b, "  Word density:\n")
		for _, d := range c.Density {
			fmt.Fprintf(&b, "    %-20s %3dx  %.1f%%\n", d.Word, d.Count, d.Density)
		}
	}

	r := c.Readability
	if r.FleschEase != 0 || r.FleschGrade != 0 {
		fmt.Fprintf(&b, "  Readability: Flesch %.1f (%s), grade %.1f, fog %.1f\n",
			r.FleschEase, fleschBand(r.FleschEase), r.FleschGrade, r.GunningFog)
	}
	fmt.Fprintf(&b, "  Reading time: %s\n", readingTimeLabel(r.ReadingTimeSec))
	return b.String()
}

func fleschBand(ease float64) string {
	switch {
	case ease >= 60:
		return "easy"
	case ease >= 30:
		return "standard"
	default:
		return "hard"
	}
}

func readingTimeLabel(seconds float64) string {
	if seconds >= 60 {
		return fmt.Sprintf("%.0f min", seconds/60)
	}
	return fmt.Sprintf("%.0f sec", seconds)
}

// Issues renders prioritized audit issues, impact-descending.
func Issues(site string, issues []tracker.TrackedIssue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  --- Issues: %s ---\n", site)
	if len(issues) == 0 {
		fmt.Fprintf(&b, "  No open issues.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  %-28s %-10s %-7s %s\n", "Check", "Status", "Impact", "Difficulty")
	for _, issue := range issues {
		fmt.Fprintf(&b, "  %-28s %-10s %-7d %s\n",
			issue.Check.Name, issue.StatusLabel(), issue.Impact, issue.Difficulty)
	}
	n := 0
	for _, issue := range issues {
		if issue.Check.Hint == "" {
			continue
		}
		if n == 0 {
			fmt.Fprintf(&b, "\n  Fix hints:\n")
		}
		n++
		fmt.Fprintf(&b, "  %d. %s\n", n, issue.Check.Hint)
	}
	return b.String()
}

// FixedHistory renders resolved issues, most recently fixed first. The
// issues file supplies the fixed_at timestamps.
func FixedHistory(site string, fixed []tracker.TrackedIssue, state *models.IssuesFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  --- Fixed: %s ---\n", site)
	if len(fixed) == 0 {
		fmt.Fprintf(&b, "  Nothing fixed yet.\n")
		return b.String()
	}
	for _, issue := range fixed {
		when := state.Issues[site+"|"+issue.Check.Name].FixedAt
		if when == "" {
			when = "?"
		}
		fmt.Fprintf(&b, "  + %-28s fixed %s\n", issue.Check.Name, when)
	}
	return b.String()
}

// MonitorDiff renders position changes between two snapshots.
func MonitorDiff(site string, diff *tracker.SnapshotDiff, threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  --- Position changes: %s (threshold %.1f) ---\n", site, threshold)
	if diff.Empty() {
		fmt.Fprintf(&b, "  No significant changes.\n")
		return b.String()
	}
	for _, ch := range diff.Changed {
		arrow := "up"
		if ch.Delta < 0 {
			arrow = "down"
		}
		fmt.Fprintf(&b, "  %-4s %-40s %.1f -> %.1f (%+.1f)\n",
			arrow, ch.Query, ch.PrevPosition, ch.CurrPosition, ch.Delta)
	}
	for _, ch := range diff.New {
		fmt.Fprintf(&b, "  new  %-40s pos %.1f  imp=%d\n", ch.Query, ch.CurrPosition, ch.Impressions)
	}
	for _, ch := range diff.Dropped {
		fmt.Fprintf(&b, "  gone %-40s was %.1f  imp=%d\n", ch.Query, ch.PrevPosition, ch.Impressions)
	}
	return b.String()
}

// SearchRows renders GSC analytics rows as a fixed-width query table.
func SearchRows(rows []models.SearchRow, limit int) string {
	var b strings.Builder
	for i, r := range rows {
		if i >= limit {
			break
		}
		query := "?"
		if len(r.Keys) > 0 {
			query = r.Keys[0]
		}
		fmt.Fprintf(&b, "    %-40s clicks=%4.0f  imp=%6.0f  pos=%.1f\n",
			query, r.Clicks, r.Impressions, r.Position)
	}
	return b.String()
}

// Competitors renders a SERP competitor comparison table.
func Competitors(pages []models.CompetitorPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-30s %-6s %-6s %-5s %-5s %s\n",
		"Domain", "Words", "FAQ", "OG", "H1", "Schema")
	for _, p := range pages {
		if p.Err {
			fmt.Fprintf(&b, "  %-30s (unreachable)\n", p.Domain)
			continue
		}
		fmt.Fprintf(&b, "  %-30s %-6d %-6s %-5s %-5s %s\n",
			p.Domain, p.WordCount, yn(p.HasFAQ), yn(p.OGImage), yn(p.H1 != ""),
			strings.Join(p.SchemaTypes, ","))
	}
	return b.String()
}

func yn(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
