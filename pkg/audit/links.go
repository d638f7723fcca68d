package audit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedSchemes are href prefixes that never name a checkable page.
var skippedSchemes = []string{"#", "mailto:", "tel:", "javascript:"}

// internalLinks collects same-host links from the document in order,
// resolved against pageURL and deduplicated, up to max entries.
func internalLinks(doc *goquery.Document, pageURL string, max int) []string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		for _, prefix := range skippedSchemes {
			if strings.HasPrefix(href, prefix) {
				return
			}
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := parsed.ResolveReference(ref)
		if full.Host != parsed.Host {
			return
		}
		s := full.String()
		if seen[s] || len(links) >= max {
			return
		}
		seen[s] = true
		links = append(links, s)
	})
	return links
}

// checkLinks HEAD-requests each link and returns the broken ones, annotated
// with the status code or "error". 404 and 500 count as broken; other
// statuses pass.
func (a *Auditor) checkLinks(links []string) []string {
	var broken []string
	for _, link := range links {
		if a.limiter != nil {
			a.limiter.Wait(context.Background())
		}
		status, err := a.client.Head(link)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s (error)", link))
			continue
		}
		if status == 404 || status == 500 {
			broken = append(broken, fmt.Sprintf("%s (%d)", link, status))
		}
	}
	return broken
}

// imageAltStats counts images and how many lack a non-blank alt attribute.
func imageAltStats(doc *goquery.Document) (total, missing int) {
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		total++
		alt, ok := sel.Attr("alt")
		if !ok || strings.TrimSpace(alt) == "" {
			missing++
		}
	})
	return total, missing
}
