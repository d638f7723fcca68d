// Package pagespeed queries the Google PageSpeed Insights API for Lighthouse
// scores and Core Web Vitals field data. The API is free and needs no key.
package pagespeed

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

var logger = log.New(os.Stdout, "", 0)

const apiBase = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Lighthouse runs take a while; the API regularly needs most of a minute.
const requestTimeout = 60 * time.Second

var strategies = []string{"mobile", "desktop"}

// cwvLabels maps CrUX metric keys to the short labels used in reports.
var cwvLabels = map[string]string{
	"LARGEST_CONTENTFUL_PAINT_MS":   "LCP",
	"CUMULATIVE_LAYOUT_SHIFT_SCORE": "CLS",
	"INTERACTION_TO_NEXT_PAINT":     "INP",
	"FIRST_CONTENTFUL_PAINT_MS":     "FCP",
}

type apiResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score float64 `json:"score"`
		} `json:"categories"`
	} `json:"lighthouseResult"`
	LoadingExperience struct {
		Metrics map[string]struct {
			Percentile float64 `json:"percentile"`
			Category   string  `json:"category"`
		} `json:"metrics"`
	} `json:"loadingExperience"`
}

// Check fetches PageSpeed results for both strategies. A failed strategy is
// left as an empty entry; the audit proceeds regardless.
func Check(pageURL string) map[string]models.StrategySpeed {
	client := &http.Client{Timeout: requestTimeout}
	result := make(map[string]models.StrategySpeed, len(strategies))

	for _, strategy := range strategies {
		result[strategy] = models.StrategySpeed{}

		apiURL := apiBase + "?url=" + url.QueryEscape(pageURL) +
			"&strategy=" + strategy +
			"&category=performance&category=seo&category=best-practices"

		resp, err := client.Get(apiURL)
		if err != nil {
			logger.Printf("PageSpeed %s failed for %s: %v\n", strategy, pageURL, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			logger.Printf("PageSpeed %s failed for %s (HTTP %d)\n", strategy, pageURL, resp.StatusCode)
			continue
		}

		var parsed apiResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			logger.Printf("PageSpeed %s response unparseable for %s: %v\n", strategy, pageURL, err)
			continue
		}

		scores := make(map[string]int)
		for id, cat := range parsed.LighthouseResult.Categories {
			scores[id] = int(cat.Score * 100)
		}

		cwv := make(map[string]models.WebVital)
		for key, label := range cwvLabels {
			if metric, ok := parsed.LoadingExperience.Metrics[key]; ok {
				cwv[label] = models.WebVital{Value: int(metric.Percentile), Rating: metric.Category}
			}
		}

		result[strategy] = models.StrategySpeed{Scores: scores, CWV: cwv}
	}

	return result
}
