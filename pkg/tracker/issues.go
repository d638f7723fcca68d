// Package tracker diffs audit findings and monitor snapshots across runs.
// Issues carry their timestamps in the store; status is derived at diff time
// from presence in the current failing set, never persisted verbatim.
package tracker

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/storage"
)

const (
	StatusNew   = "new"
	StatusOpen  = "open"
	StatusFixed = "fixed"
)

// impactTable ranks how much a failing check hurts, 1-10. Unlisted checks
// default to 5.
var impactTable = map[string]int{
	"Accessible":           10,
	"HTTPS":                10,
	"Robots meta":          10,
	"Googlebot allowed":    9,
	"Title":                9,
	"Meta description":     8,
	"H1":                   7,
	"Canonical":            7,
	"Internal links":       7,
	"sitemap.xml":          7,
	"robots.txt":           6,
	"JSON-LD":              6,
	"og:title":             6,
	"og:image":             6,
	"Viewport":             6,
	"Organization/WebSite": 5,
	"Hreflang":             4,
	"HTML lang attr":       4,
	"Rich schema":          4,
	"llms.txt":             4,
	"AI bots allowed":      4,
	"Image alt tags":       3,
	"twitter:card":         3,
	"Favicon":              2,
	"llms-full.txt":        2,
	"Markdown content":     2,
}

const defaultImpact = 5

// difficultyTable estimates the fix effort. Display only, never sorted on.
var difficultyTable = map[string]string{
	"Title":            "Easy",
	"Meta description": "Easy",
	"H1":               "Easy",
	"Canonical":        "Easy",
	"Viewport":         "Easy",
	"og:title":         "Easy",
	"og:description":   "Easy",
	"twitter:card":     "Easy",
	"Favicon":          "Easy",
	"HTML lang attr":   "Easy",
	"robots.txt":       "Easy",
	"llms.txt":         "Easy",
	"llms-full.txt":    "Easy",
	"HTTPS":            "Hard",
	"Internal links":   "Hard",
	"Markdown content": "Hard",
	"Hreflang":         "Hard",
}

const defaultDifficulty = "Medium"

// Impact returns the 1-10 impact rank for a check name.
func Impact(checkName string) int {
	if v, ok := impactTable[checkName]; ok {
		return v
	}
	return defaultImpact
}

// Difficulty returns the Easy/Medium/Hard estimate for a check name.
func Difficulty(checkName string) string {
	if v, ok := difficultyTable[checkName]; ok {
		return v
	}
	return defaultDifficulty
}

// TrackedIssue is one current failing check annotated with its history.
type TrackedIssue struct {
	Site       string
	Check      models.Check
	Status     string
	DaysOpen   int
	Impact     int
	Difficulty string
}

// StatusLabel renders the display form: "New", "Open (Nd)" or "Fixed".
func (t TrackedIssue) StatusLabel() string {
	switch t.Status {
	case StatusOpen:
		return fmt.Sprintf("Open (%dd)", t.DaysOpen)
	case StatusFixed:
		return "Fixed"
	default:
		return "New"
	}
}

// issueKey joins site and check name into the store key.
func issueKey(site, checkName string) string {
	return site + "|" + checkName
}

// UpdateIssues folds the failing checks of one site into the issue store and
// returns the current issues ranked by impact. The store is mutated in
// place: new failures are inserted, persisting ones have last_seen advanced
// with first_seen carried forward, and tracked issues absent from the
// failing set are marked fixed. Fixed issues stay in the store as history.
// A reappearing key reopens without resetting first_seen.
func UpdateIssues(state *models.IssuesFile, site string, failing []models.Check, now time.Time) []TrackedIssue {
	nowStr := now.UTC().Format("2006-01-02T15:04:05")
	if state.Issues == nil {
		state.Issues = map[string]models.Issue{}
	}

	current := make(map[string]bool, len(failing))
	var tracked []TrackedIssue

	for _, check := range failing {
		key := issueKey(site, check.Name)
		current[key] = true

		issue, existed := state.Issues[key]
		t := TrackedIssue{
			Site:       site,
			Check:      check,
			Impact:     Impact(check.Name),
			Difficulty: Difficulty(check.Name),
		}
		if existed {
			t.Status = StatusOpen
			t.DaysOpen = daysBetween(issue.FirstSeen, now)
			issue.Status = StatusOpen
			issue.LastSeen = nowStr
			issue.FixedAt = ""
		} else {
			t.Status = StatusNew
			issue = models.Issue{Status: StatusNew, FirstSeen: nowStr, LastSeen: nowStr}
		}
		state.Issues[key] = issue
		tracked = append(tracked, t)
	}

	// Tracked issues of this site that stopped failing are now fixed.
	for key, issue := range state.Issues {
		if !strings.HasPrefix(key, site+"|") || current[key] || issue.Status == StatusFixed {
			continue
		}
		issue.Status = StatusFixed
		issue.FixedAt = nowStr
		state.Issues[key] = issue
	}

	state.LastCheck = nowStr

	sort.SliceStable(tracked, func(i, j int) bool {
		return tracked[i].Impact > tracked[j].Impact
	})
	return tracked
}

// FixedIssues returns this site's resolved issues, most recently fixed first.
func FixedIssues(state *models.IssuesFile, site string) []TrackedIssue {
	var fixed []TrackedIssue
	for key, issue := range state.Issues {
		if !strings.HasPrefix(key, site+"|") || issue.Status != StatusFixed {
			continue
		}
		name := strings.TrimPrefix(key, site+"|")
		fixed = append(fixed, TrackedIssue{
			Site:       site,
			Check:      models.Check{Name: name},
			Status:     StatusFixed,
			Impact:     Impact(name),
			Difficulty: Difficulty(name),
		})
	}
	sort.Slice(fixed, func(i, j int) bool {
		a := state.Issues[issueKey(site, fixed[i].Check.Name)].FixedAt
		b := state.Issues[issueKey(site, fixed[j].Check.Name)].FixedAt
		if a != b {
			return a > b
		}
		return fixed[i].Check.Name < fixed[j].Check.Name
	})
	return fixed
}

// daysBetween returns whole days from a stored timestamp to now, never
// negative. An unparseable timestamp counts as zero days.
func daysBetween(firstSeen string, now time.Time) int {
	first, err := storage.ParseTimestamp(firstSeen)
	if err != nil {
		return 0
	}
	days := int(now.UTC().Sub(first).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
