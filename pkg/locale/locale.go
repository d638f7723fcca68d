// Package locale decides whether a fetched root page is a thin shell that
// aliases to a richer localized page. Single-page sites often serve an empty
// root that redirects client-side; auditing that shell would flag every
// content check, so the audit substitutes the resolved locale page.
package locale

import (
	"net/url"
	"strings"

	"github.com/amosWeiskopf/seosmith/pkg/extract"
	"github.com/amosWeiskopf/seosmith/pkg/fetch"
)

// probePaths are tried last, in order.
var probePaths = []string{"en", "ru"}

// Resolve returns the URL of the richer localized page, or "" when the root
// page is already the canonical content page. The steps run in strict order
// and the first hit wins:
//
//  1. title + JSON-LD present: no redirect
//  2. hreflang links (x-default, then en*, then first listed)
//  3. meta refresh target
//  4. literal JS redirect target
//  5. /en/ then /ru/ probe, accepted on HTTP 200 with a longer title
func Resolve(client *fetch.Client, pageURL, html string) string {
	title := extract.Tag(html, "title")
	jsonld := extract.JSONLD(html)

	// Root page already has full content.
	if title != "" && len(jsonld) > 0 {
		return ""
	}

	base := origin(pageURL)

	hreflangs := extract.Hreflangs(html)
	for _, h := range hreflangs {
		if h.Lang == "x-default" {
			return absolutize(base, h.Href)
		}
	}
	for _, h := range hreflangs {
		if strings.HasPrefix(h.Lang, "en") {
			return absolutize(base, h.Href)
		}
	}
	if len(hreflangs) > 0 {
		return absolutize(base, hreflangs[0].Href)
	}

	if target := extract.MetaRefresh(html); target != "" {
		return absolutize(base, target)
	}

	if target := extract.JSRedirect(html); target != "" {
		return absolutize(base, target)
	}

	for _, lang := range probePaths {
		localeURL := base + "/" + lang + "/"
		res, err := client.GetTimeout(localeURL, fetch.ProbeTimeout)
		if err != nil || res.Status != 200 {
			continue
		}
		localeTitle := extract.Tag(res.Body, "title")
		if localeTitle != "" && (title == "" || len(localeTitle) > len(title)) {
			return localeURL
		}
	}

	return ""
}

// Differs reports whether a resolved locale URL actually points somewhere
// other than the original, comparing with trailing slashes stripped.
func Differs(original, localeURL string) bool {
	return strings.TrimRight(localeURL, "/") != strings.TrimRight(original, "/")
}

func origin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	return u.Scheme + "://" + u.Host
}

func absolutize(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
