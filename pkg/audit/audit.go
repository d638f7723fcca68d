// Package audit runs the SEO + GEO check battery against a single URL and
// produces a scored result. Each check contributes one point to the maximum
// score; the battery never aborts mid-run, an unreachable page is itself a
// (failing) result.
package audit

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/content"
	"github.com/amosWeiskopf/seosmith/pkg/engines/pagespeed"
	"github.com/amosWeiskopf/seosmith/pkg/extract"
	"github.com/amosWeiskopf/seosmith/pkg/fetch"
	"github.com/amosWeiskopf/seosmith/pkg/locale"
)

// richSchemas are the JSON-LD types AI answer engines can cite directly.
var richSchemas = []string{"FAQPage", "HowTo", "Article", "BlogPosting", "Product", "SoftwareApplication"}

// Auditor runs the check battery. Link HEAD requests are paced so a page
// with many internal links does not hammer its own host.
type Auditor struct {
	client   *fetch.Client
	maxLinks int
	limiter  *rate.Limiter
}

// New returns an Auditor checking at most maxLinks internal links per page.
func New(client *fetch.Client, maxLinks int) *Auditor {
	return &Auditor{
		client:   client,
		maxLinks: maxLinks,
		limiter:  rate.NewLimiter(rate.Limit(10), 1),
	}
}

// Options tunes a single audit run.
type Options struct {
	// SkipSpeed skips the PageSpeed Insights calls (they dominate runtime).
	SkipSpeed bool
	// SkipContent skips keyword and readability analysis.
	SkipContent bool
}

type resultBuilder struct {
	*models.AuditResult
}

func (b *resultBuilder) add(category, name string, ok bool, value, hint string) {
	b.MaxScore++
	if ok {
		b.Score++
	}
	b.Checks = append(b.Checks, models.Check{
		Category: category, Name: name, OK: ok, Value: value, Hint: hint,
	})
}

// Run audits a URL and returns the scored result. The only fatal condition
// is an unreachable page, reported as a single failing Accessible check.
func (a *Auditor) Run(pageURL string, opts Options) *models.AuditResult {
	b := &resultBuilder{&models.AuditResult{URL: pageURL}}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		b.add("page", "Accessible", false, "invalid URL", "")
		return b.AuditResult
	}
	base := parsed.Scheme + "://" + parsed.Host

	res, err := a.client.Get(pageURL)
	if err != nil {
		b.add("page", "Accessible", false, "HTTP timeout", "")
		return b.AuditResult
	}
	if res.Status != 200 {
		b.add("page", "Accessible", false, fmt.Sprintf("HTTP %d", res.Status), "")
		return b.AuditResult
	}
	html := res.Body

	// Thin root shells are swapped for the resolved locale page so the
	// content checks grade the page users actually land on.
	localeURL := locale.Resolve(a.client, pageURL, html)
	if localeURL != "" && locale.Differs(pageURL, localeURL) {
		if localeRes, err := a.client.Get(localeURL); err == nil && localeRes.Status == 200 {
			b.LocaleURL = localeURL
			html = localeRes.Body
		}
	}

	// SEO basics
	title := extract.Tag(html, "title")
	titleOK := title != "" && len([]rune(title)) <= 60
	b.add("seo", "Title", titleOK, truncate(title, 60), pickHint(title == "", "Missing <title>",
		len([]rune(title)) > 60, "Too long (>60)"))

	desc := extract.Meta(html, "description")
	descOK := desc != "" && len([]rune(desc)) <= 160
	b.add("seo", "Meta description", descOK, truncate(desc, 80), pickHint(desc == "", "Missing meta description",
		len([]rune(desc)) > 160, "Too long (>160)"))

	h1 := extract.Tag(html, "h1")
	b.add("seo", "H1", h1 != "", truncate(h1, 60), pickHint(h1 == "", "Missing H1 tag", false, ""))

	canonical := extract.Canonical(html)
	b.add("seo", "Canonical", canonical != "", canonical, pickHint(canonical == "", "Missing canonical URL", false, ""))

	viewport := extract.Meta(html, "viewport")
	b.add("seo", "Viewport", viewport != "", "", pickHint(viewport == "", "Missing viewport meta (mobile)", false, ""))

	// Hreflang / i18n
	hreflangs := extract.Hreflangs(html)
	hreflangValue := ""
	if len(hreflangs) > 0 {
		hreflangValue = fmt.Sprintf("%d languages", len(hreflangs))
	}
	b.add("seo", "Hreflang", len(hreflangs) > 0, hreflangValue,
		pickHint(len(hreflangs) == 0, "No hreflang (ok if single language)", false, ""))

	if len(hreflangs) > 0 {
		hasXDefault := false
		for _, h := range hreflangs {
			if h.Lang == "x-default" {
				hasXDefault = true
			}
		}
		b.add("seo", "Hreflang x-default", hasXDefault, "",
			pickHint(!hasXDefault, "Add hreflang x-default for language fallback", false, ""))

		auditedURL := localeURL
		if auditedURL == "" {
			auditedURL = pageURL
		}
		auditedNorm := strings.TrimRight(auditedURL, "/")
		selfRef := false
		allAbsolute := true
		for _, h := range hreflangs {
			if strings.TrimRight(h.Href, "/") == auditedNorm {
				selfRef = true
			}
			if !strings.HasPrefix(h.Href, "http") {
				allAbsolute = false
			}
		}
		b.add("seo", "Hreflang self-ref", selfRef, "",
			pickHint(!selfRef, "Current page should be in its own hreflang set", false, ""))
		b.add("seo", "Hreflang absolute URLs", allAbsolute, "",
			pickHint(!allAbsolute, "Hreflang hrefs must be absolute URLs", false, ""))
	}

	htmlLang := extract.HTMLLang(html)
	b.add("seo", "HTML lang attr", htmlLang != "", htmlLang,
		pickHint(htmlLang == "", "Add lang attribute to <html> tag", false, ""))

	// Open Graph
	ogTitle := extract.Meta(html, "og:title")
	b.add("og", "og:title", ogTitle != "", truncate(ogTitle, 50), "")

	ogDesc := extract.Meta(html, "og:description")
	b.add("og", "og:description", ogDesc != "", truncate(ogDesc, 50), "")

	ogImage := extract.Meta(html, "og:image")
	b.add("og", "og:image", ogImage != "", truncate(ogImage, 60),
		pickHint(ogImage == "", "No social preview image", false, ""))

	ogURL := extract.Meta(html, "og:url")
	b.add("og", "og:url", ogURL != "", ogURL, "")

	ogType := extract.Meta(html, "og:type")
	b.add("og", "og:type", ogType != "", ogType, "")

	twCard := extract.Meta(html, "twitter:card")
	b.add("og", "twitter:card", twCard != "", twCard, "")

	// Structured data
	jsonld := extract.JSONLD(html)
	types := extract.SchemaTypes(jsonld)
	b.add("schema", "JSON-LD", len(jsonld) > 0, strings.Join(types, ", "),
		pickHint(len(jsonld) == 0, "No structured data", false, ""))

	hasOrg := false
	for _, t := range types {
		if t == "Organization" || t == "WebSite" {
			hasOrg = true
		}
	}
	b.add("schema", "Organization/WebSite", hasOrg, "",
		pickHint(!hasOrg, "Add Organization or WebSite schema", false, ""))

	// Technical
	robotsMeta := extract.Meta(html, "robots")
	noindex := strings.Contains(strings.ToLower(robotsMeta), "noindex")
	robotsValue := robotsMeta
	if robotsValue == "" {
		robotsValue = "default (index,follow)"
	}
	b.add("tech", "Robots meta", !noindex, robotsValue, pickHint(noindex, "Page is noindex!", false, ""))

	https := parsed.Scheme == "https"
	b.add("tech", "HTTPS", https, "", pickHint(!https, "Not HTTPS!", false, ""))

	robots := fetchRobots(a.client, base)

	googlebotOK := robots.allowsGooglebot()
	b.add("tech", "Googlebot allowed", googlebotOK, "",
		pickHint(!googlebotOK, "robots.txt blocks Googlebot from the site root", false, ""))

	// Files
	b.add("files", "robots.txt", robots.present, "", "")

	sitemapOK, _ := a.client.Exists(base + "/sitemap.xml")
	b.add("files", "sitemap.xml", sitemapOK, "", "")

	sitemapDeclared := robots.declaresSitemap()
	b.add("files", "Sitemap in robots.txt", sitemapDeclared, "",
		pickHint(!sitemapDeclared, "Declare the sitemap in robots.txt", false, ""))

	favicon := extract.HasFaviconLink(html)
	if !favicon {
		favicon, _ = a.client.Exists(base + "/favicon.ico")
	}
	b.add("files", "Favicon", favicon, "", "")

	// GEO: discoverability for AI agents
	llmsOK, _ := a.client.Exists(base + "/llms.txt")
	b.add("geo", "llms.txt", llmsOK, base+"/llms.txt",
		pickHint(!llmsOK, "Add llms.txt for AI agent discovery (llmstxt.org)", false, ""))

	llmsFullOK, _ := a.client.Exists(base + "/llms-full.txt")
	b.add("geo", "llms-full.txt", llmsFullOK, "",
		pickHint(!llmsFullOK, "Optional: detailed version for LLMs", false, ""))

	if robots.present {
		blocked := robots.blockedAIBots()
		value := "All AI bots allowed"
		if len(blocked) > 0 {
			value = "Blocked: " + strings.Join(blocked, ", ")
		}
		b.add("geo", "AI bots allowed", len(blocked) == 0, value,
			pickHint(len(blocked) > 0, "Some AI bots blocked in robots.txt", false, ""))
	} else {
		b.add("geo", "AI bots allowed", true, "No robots.txt = all allowed", "")
	}

	mdFound := a.markdownAvailable(base, parsed.Path)
	b.add("geo", "Markdown content", mdFound, "",
		pickHint(!mdFound, "Serve content as .md for LLM consumption", false, ""))

	var aiSchemas []string
	for _, t := range types {
		for _, rich := range richSchemas {
			if t == rich {
				aiSchemas = append(aiSchemas, t)
			}
		}
	}
	b.add("geo", "Rich schema", len(aiSchemas) > 0, strings.Join(aiSchemas, ", "),
		pickHint(len(aiSchemas) == 0, "Add FAQ/Article/Product schema for AI citations", false, ""))

	// Links & images
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	if docErr == nil {
		links := internalLinks(doc, pageURL, a.maxLinks)
		broken := a.checkLinks(links)
		detail := "All OK"
		hint := ""
		if len(broken) > 0 {
			shown := broken
			if len(shown) > 5 {
				shown = shown[:5]
			}
			detail = fmt.Sprintf("%d broken: %s", len(broken), strings.Join(shown, ", "))
			hint = fmt.Sprintf("Fix %d broken internal link(s)", len(broken))
		}
		b.add("links", "Internal links", len(broken) == 0, detail, hint)

		total, missing := imageAltStats(doc)
		altValue := "No images found"
		if total > 0 {
			altValue = fmt.Sprintf("%d/%d missing", missing, total)
		}
		b.add("links", "Image alt tags", missing == 0, altValue,
			pickHint(missing > 0, fmt.Sprintf("Add alt text to %d image(s)", missing), false, ""))
	}

	if !opts.SkipSpeed {
		b.Speed = pagespeed.Check(pageURL)
	}
	if !opts.SkipContent {
		b.Content = content.Analyze(html, title, desc, h1)
	}

	return b.AuditResult
}

// markdownAvailable probes the llms.txt and page-level .md endpoints for a
// substantial (>100 byte) markdown rendition of the content.
func (a *Auditor) markdownAvailable(base, path string) bool {
	mdPath := path + ".md"
	if path == "" || path == "/" {
		mdPath = "/index.md"
	}
	for _, p := range []string{"/llms.txt", mdPath} {
		res, err := a.client.GetTimeout(base+p, fetch.ProbeTimeout)
		if err == nil && res.Status == 200 && len(res.Body) > 100 {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// pickHint returns the first hint whose condition holds.
func pickHint(cond1 bool, hint1 string, cond2 bool, hint2 string) string {
	if cond1 {
		return hint1
	}
	if cond2 {
		return hint2
	}
	return ""
}
