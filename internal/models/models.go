package models

// Check is a single pass/fail audit evaluation. The (site, Name) pair is the
// identity used for issue tracking across runs, so Name strings must stay
// stable between releases.
type Check struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Value    string `json:"value"`
	Hint     string `json:"hint"`
}

// AuditResult holds the full audit of one URL.
type AuditResult struct {
	URL       string                   `json:"url"`
	LocaleURL string                   `json:"locale_url,omitempty"`
	Checks    []Check                  `json:"checks"`
	Score     int                      `json:"score"`
	MaxScore  int                      `json:"max_score"`
	Speed     map[string]StrategySpeed `json:"speed,omitempty"`
	Content   *ContentResult           `json:"content,omitempty"`
}

// Percent returns the display score as score/max*100, 0 when nothing ran.
func (a *AuditResult) Percent() int {
	if a.MaxScore == 0 {
		return 0
	}
	return a.Score * 100 / a.MaxScore
}

// StrategySpeed is the PageSpeed result for one strategy (mobile or desktop).
type StrategySpeed struct {
	Scores map[string]int      `json:"scores"`
	CWV    map[string]WebVital `json:"cwv"`
}

// WebVital is one Core Web Vitals field metric with its vendor rating band.
type WebVital struct {
	Value  int    `json:"value"`
	Rating string `json:"rating"`
}

// ContentResult is the keyword/readability/density payload of an audit.
type ContentResult struct {
	Keywords    []Keyword     `json:"keywords"`
	Readability Readability   `json:"readability"`
	WordCount   int           `json:"word_count"`
	Density     []WordDensity `json:"density"`
	Lang        string        `json:"lang"`
}

// Keyword is one extracted keyword candidate with placement flags.
type Keyword struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
	InTitle bool    `json:"in_title"`
	InH1    bool    `json:"in_h1"`
	InDesc  bool    `json:"in_desc"`
}

// WordDensity is one entry of the top-frequency word table.
type WordDensity struct {
	Word    string  `json:"word"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Readability metrics. Flesch and Fog are computed for English text only;
// ReadingTimeSec is language-independent.
type Readability struct {
	FleschEase     float64 `json:"flesch_ease,omitempty"`
	FleschGrade    float64 `json:"flesch_grade,omitempty"`
	GunningFog     float64 `json:"gunning_fog,omitempty"`
	ReadingTimeSec float64 `json:"reading_time_sec"`
}

// Issue is one persisted tracked audit failure, keyed by "{site}|{check}".
// Only the timestamps are authoritative; Status is recomputed on each run.
type Issue struct {
	Status    string `json:"status"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen,omitempty"`
	FixedAt   string `json:"fixed_at,omitempty"`
}

// IssuesFile is the on-disk shape of issues.json.
type IssuesFile struct {
	LastCheck string           `json:"last_check"`
	Issues    map[string]Issue `json:"issues"`
}

// QueryStats is one search query's metrics in a monitor snapshot.
type QueryStats struct {
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	Position    float64 `json:"position"`
}

// SiteSnapshot holds the per-query stats for one site.
type SiteSnapshot struct {
	Queries map[string]QueryStats `json:"queries"`
}

// MonitorFile is the on-disk shape of monitor.json. Only the most recent
// snapshot is retained.
type MonitorFile struct {
	LastCheck string                  `json:"last_check"`
	Sites     map[string]SiteSnapshot `json:"sites"`
}

// SearchRow is one row of search analytics (Google Search Console shape).
type SearchRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

// CompetitorPage is the SEO snapshot of one competitor URL from a SERP.
type CompetitorPage struct {
	URL         string   `json:"url"`
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	H1          string   `json:"h1"`
	OGImage     bool     `json:"og_image"`
	SchemaTypes []string `json:"schema_types"`
	HasFAQ      bool     `json:"has_faq"`
	WordCount   int      `json:"word_count"`
	Err         bool     `json:"error"`
}
