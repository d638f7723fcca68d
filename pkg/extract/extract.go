// Package extract provides the raw-markup extraction primitives used by the
// audit and locale packages. The primitives deliberately work on the raw HTML
// text with case-insensitive pattern search rather than a DOM tree: the
// first-match-wins and attribute-order tie-breaks below are load-bearing for
// issue tracking and are pinned by tests.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Meta returns the content of a meta tag looked up by name. The attribute
// order is fixed: name before property, and within each, the
// attribute-first form before the content-first form. First match wins.
func Meta(html, name string) string {
	quoted := regexp.QuoteMeta(name)
	for _, attr := range []string{"name", "property"} {
		re := regexp.MustCompile(fmt.Sprintf(`(?i)<meta\s+%s="%s"\s+content="([^"]*)"`, attr, quoted))
		if m := re.FindStringSubmatch(html); m != nil {
			return m[1]
		}
		re = regexp.MustCompile(fmt.Sprintf(`(?i)<meta\s+content="([^"]*)"\s+%s="%s"`, attr, quoted))
		if m := re.FindStringSubmatch(html); m != nil {
			return m[1]
		}
	}
	return ""
}

// Tag returns the trimmed inner text of the first occurrence of a tag.
func Tag(html, tag string) string {
	quoted := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(fmt.Sprintf(`(?is)<%s[^>]*>(.*?)</%s>`, quoted, quoted))
	if m := re.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var jsonldRe = regexp.MustCompile(`(?s)<script\s+type="application/ld\+json"[^>]*>(.*?)</script>`)

// JSONLD returns all parseable JSON-LD blocks. Blocks that fail to parse are
// skipped, and blocks holding a list are flattened into the result.
func JSONLD(html string) []map[string]any {
	var results []map[string]any
	for _, m := range jsonldRe.FindAllStringSubmatch(html, -1) {
		var data any
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			continue
		}
		switch v := data.(type) {
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok {
					results = append(results, obj)
				}
			}
		case map[string]any:
			results = append(results, v)
		}
	}
	return results
}

// SchemaTypes returns the @type of each JSON-LD block, "?" when absent.
func SchemaTypes(blocks []map[string]any) []string {
	types := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t, ok := b["@type"].(string); ok {
			types = append(types, t)
		} else {
			types = append(types, "?")
		}
	}
	return types
}

// Hreflang is one hreflang alternate link.
type Hreflang struct {
	Lang string
	Href string
}

var (
	hreflangFirstRe = regexp.MustCompile(`(?i)<link\s+[^>]*hreflang="([^"]*)"[^>]*href="([^"]*)"`)
	hrefFirstRe     = regexp.MustCompile(`(?i)<link\s+[^>]*href="([^"]*)"[^>]*hreflang="([^"]*)"`)
)

// Hreflangs parses all hreflang link tags, accepting either attribute order.
// Matches with hreflang first take precedence; the href-first pass only adds
// languages not already seen.
func Hreflangs(html string) []Hreflang {
	var results []Hreflang
	for _, m := range hreflangFirstRe.FindAllStringSubmatch(html, -1) {
		results = append(results, Hreflang{Lang: m[1], Href: m[2]})
	}
	for _, m := range hrefFirstRe.FindAllStringSubmatch(html, -1) {
		lang := m[2]
		seen := false
		for _, r := range results {
			if r.Lang == lang {
				seen = true
				break
			}
		}
		if !seen {
			results = append(results, Hreflang{Lang: lang, Href: m[1]})
		}
	}
	return results
}

var (
	canonicalRelFirst  = regexp.MustCompile(`(?i)<link\s+rel="canonical"\s+href="([^"]*)"`)
	canonicalHrefFirst = regexp.MustCompile(`(?i)<link\s+href="([^"]*)"\s+rel="canonical"`)
)

// Canonical returns the canonical link href, trying rel-first then
// href-first attribute order.
func Canonical(html string) string {
	if m := canonicalRelFirst.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := canonicalHrefFirst.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

var htmlLangRe = regexp.MustCompile(`(?i)<html[^>]*\slang="([^"]*)"`)

// HTMLLang returns the lang attribute of the html element.
func HTMLLang(html string) string {
	if m := htmlLangRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

var faviconRe = regexp.MustCompile(`(?i)<link\s+[^>]*rel="icon"`)

// HasFaviconLink reports whether the page declares a <link rel="icon">.
func HasFaviconLink(html string) bool {
	return faviconRe.MatchString(html)
}

var metaRefreshRe = regexp.MustCompile(`(?i)<meta\s+http-equiv="refresh"[^>]*url=([^">\s]+)`)

// MetaRefresh returns the redirect target of a meta refresh tag, with any
// wrapping quotes stripped.
func MetaRefresh(html string) string {
	if m := metaRefreshRe.FindStringSubmatch(html); m != nil {
		return strings.Trim(m[1], `'"`)
	}
	return ""
}

var jsRedirectRe = regexp.MustCompile(`(?:window\.location|location\.href)\s*=\s*["']([^"']+)["']`)

// JSRedirect returns the target of a literal window.location / location.href
// assignment, if the page contains one.
func JSRedirect(html string) string {
	if m := jsRedirectRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}
