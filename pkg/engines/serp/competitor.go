package serp

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/content"
	"github.com/amosWeiskopf/seosmith/pkg/extract"
	"github.com/amosWeiskopf/seosmith/pkg/fetch"
)

// ExtractPageSEO fetches a competitor URL and pulls its SEO surface: title,
// description, H1, schema types and readable word count. Unreachable pages
// come back with Err set so a SERP sweep can keep going.
func ExtractPageSEO(client *fetch.Client, pageURL string) models.CompetitorPage {
	res, err := client.Get(pageURL)
	if err != nil || res.Status != http.StatusOK {
		return models.CompetitorPage{URL: pageURL, Err: true}
	}
	html := res.Body

	schemaTypes := extract.SchemaTypes(extract.JSONLD(html))
	hasFAQ := false
	for _, t := range schemaTypes {
		if t == "FAQPage" || t == "HowTo" {
			hasFAQ = true
			break
		}
	}

	domain := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		domain = parsed.Host
	}

	return models.CompetitorPage{
		URL:         pageURL,
		Domain:      domain,
		Title:       extract.Tag(html, "title"),
		Description: extract.Meta(html, "description"),
		H1:          extract.Tag(html, "h1"),
		OGImage:     extract.Meta(html, "og:image") != "",
		SchemaTypes: schemaTypes,
		HasFAQ:      hasFAQ,
		WordCount:   len(strings.Fields(content.BodyText(html))),
	}
}
