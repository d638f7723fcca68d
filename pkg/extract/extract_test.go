package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaAttributeOrder(t *testing.T) {
	tests := []struct {
		name string
		html string
		key  string
		want string
	}{
		{
			name: "name before property",
			html: `<meta property="description" content="prop"><meta name="description" content="named">`,
			key:  "description",
			want: "named",
		},
		{
			name: "attribute-first form wins over content-first",
			html: `<meta content="second" name="description"><meta name="description" content="first">`,
			key:  "description",
			want: "first",
		},
		{
			name: "content-first form is found",
			html: `<meta content="flipped" name="description">`,
			key:  "description",
			want: "flipped",
		},
		{
			name: "property fallback",
			html: `<meta property="og:title" content="OG Title">`,
			key:  "og:title",
			want: "OG Title",
		},
		{
			name: "case insensitive",
			html: `<META NAME="description" CONTENT="upper">`,
			key:  "description",
			want: "upper",
		},
		{
			name: "absent",
			html: `<meta name="keywords" content="a,b">`,
			key:  "description",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Meta(tt.html, tt.key))
		})
	}
}

func TestTagFirstOccurrenceOnly(t *testing.T) {
	html := `<h1 class="a"> First </h1><h1>Second</h1>`
	assert.Equal(t, "First", Tag(html, "h1"))

	multiline := "<title>\n  Split\n  Title\n</title>"
	assert.Equal(t, "Split\n  Title", Tag(multiline, "title"))

	assert.Equal(t, "", Tag("<p>no title here</p>", "title"))
}

func TestJSONLDParsing(t *testing.T) {
	html := `
		<script type="application/ld+json">{"@type": "Organization", "name": "Acme"}</script>
		<script type="application/ld+json">not valid json</script>
		<script type="application/ld+json">[{"@type": "FAQPage"}, {"@type": "Article"}]</script>
	`
	blocks := JSONLD(html)
	assert.Len(t, blocks, 3, "broken block skipped, list block flattened")

	types := SchemaTypes(blocks)
	assert.Equal(t, []string{"Organization", "FAQPage", "Article"}, types)
}

func TestJSONLDMissingType(t *testing.T) {
	blocks := JSONLD(`<script type="application/ld+json">{"name": "no type"}</script>`)
	assert.Equal(t, []string{"?"}, SchemaTypes(blocks))
}

func TestHreflangsBothAttributeOrders(t *testing.T) {
	html := `
		<link rel="alternate" hreflang="en" href="https://example.com/en/">
		<link rel="alternate" href="https://example.com/de/" hreflang="de">
		<link rel="alternate" href="https://example.com/en-dup/" hreflang="en">
	`
	got := Hreflangs(html)
	assert.Len(t, got, 2, "href-first pass must not duplicate a seen lang")
	assert.Equal(t, Hreflang{Lang: "en", Href: "https://example.com/en/"}, got[0])
	assert.Equal(t, Hreflang{Lang: "de", Href: "https://example.com/de/"}, got[1])
}

func TestCanonicalBothOrders(t *testing.T) {
	assert.Equal(t, "https://example.com/",
		Canonical(`<link rel="canonical" href="https://example.com/">`))
	assert.Equal(t, "https://example.com/x",
		Canonical(`<link href="https://example.com/x" rel="canonical">`))
	assert.Equal(t, "", Canonical(`<link rel="stylesheet" href="/a.css">`))
}

func TestHTMLLang(t *testing.T) {
	assert.Equal(t, "en", HTMLLang(`<html lang="en"><head></head></html>`))
	assert.Equal(t, "ru-RU", HTMLLang(`<html dir="ltr" lang="ru-RU">`))
	assert.Equal(t, "", HTMLLang(`<html><head></head></html>`))
}

func TestMetaRefresh(t *testing.T) {
	assert.Equal(t, "/en/",
		MetaRefresh(`<meta http-equiv="refresh" content="0; url=/en/">`))
	assert.Equal(t, "https://example.com/en/",
		MetaRefresh(`<meta http-equiv="refresh" content="0;url='https://example.com/en/'">`))
	assert.Equal(t, "", MetaRefresh(`<meta name="robots" content="index">`))
}

func TestJSRedirect(t *testing.T) {
	assert.Equal(t, "/en/", JSRedirect(`<script>window.location = "/en/";</script>`))
	assert.Equal(t, "https://example.com/en/",
		JSRedirect(`<script>location.href='https://example.com/en/'</script>`))
	assert.Equal(t, "", JSRedirect(`<script>console.log("location.href")</script>`))
}

func TestHasFaviconLink(t *testing.T) {
	assert.True(t, HasFaviconLink(`<link type="image/png" rel="icon" href="/fav.png">`))
	assert.False(t, HasFaviconLink(`<link rel="stylesheet" href="/a.css">`))
}
