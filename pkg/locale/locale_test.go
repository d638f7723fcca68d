package locale

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amosWeiskopf/seosmith/pkg/fetch"
)

func TestResolveFullRootPage(t *testing.T) {
	html := `<html><head>
		<title>Acme</title>
		<script type="application/ld+json">{"@type": "Organization"}</script>
	</head></html>`
	got := Resolve(fetch.New(), "https://example.com", html)
	assert.Equal(t, "", got, "title plus JSON-LD means the root is the content page")
}

func TestResolveHreflangPrecedence(t *testing.T) {
	client := fetch.New()

	xDefault := `<html><head>
		<link rel="alternate" hreflang="ru" href="/ru/">
		<link rel="alternate" hreflang="x-default" href="/main/">
		<link rel="alternate" hreflang="en-US" href="/en/">
	</head></html>`
	assert.Equal(t, "https://example.com/main/",
		Resolve(client, "https://example.com", xDefault))

	enFirst := `<html><head>
		<link rel="alternate" hreflang="ru" href="/ru/">
		<link rel="alternate" hreflang="en-GB" href="https://example.com/en/">
	</head></html>`
	assert.Equal(t, "https://example.com/en/",
		Resolve(client, "https://example.com", enFirst))

	firstListed := `<html><head>
		<link rel="alternate" hreflang="de" href="/de/">
		<link rel="alternate" hreflang="fr" href="/fr/">
	</head></html>`
	assert.Equal(t, "https://example.com/de/",
		Resolve(client, "https://example.com", firstListed))
}

func TestResolveMetaRefreshBeforeJS(t *testing.T) {
	html := `<html><head>
		<meta http-equiv="refresh" content="0; url=/meta/">
		<script>window.location = "/js/";</script>
	</head></html>`
	got := Resolve(fetch.New(), "https://example.com", html)
	assert.Equal(t, "https://example.com/meta/", got)
}

func TestResolveJSRedirect(t *testing.T) {
	html := `<html><head><script>location.href = 'https://example.com/app/';</script></head></html>`
	got := Resolve(fetch.New(), "https://example.com", html)
	assert.Equal(t, "https://example.com/app/", got)
}

func TestResolveProbesLocalePaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en/":
			fmt.Fprint(w, `<html><head><title>Acme: the long english title</title></head></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got := Resolve(fetch.New(), srv.URL, `<html><head></head><body>shell</body></html>`)
	assert.Equal(t, srv.URL+"/en/", got)
}

func TestResolveProbeRejectsShorterTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>x</title></head></html>`)
	}))
	defer srv.Close()

	html := `<html><head><title>Root page title that is longer</title></head></html>`
	got := Resolve(fetch.New(), srv.URL, html)
	assert.Equal(t, "", got, "a probe page with a shorter title is not richer")
}

func TestResolveIdempotent(t *testing.T) {
	// Resolving the resolved page must terminate: a content page with title
	// and JSON-LD resolves to itself on re-audit.
	resolved := `<html><head>
		<title>Acme English</title>
		<script type="application/ld+json">{"@type": "WebSite"}</script>
	</head></html>`
	assert.Equal(t, "", Resolve(fetch.New(), "https://example.com/en/", resolved))
}

func TestDiffers(t *testing.T) {
	assert.False(t, Differs("https://example.com/en/", "https://example.com/en"))
	assert.False(t, Differs("https://example.com/en", "https://example.com/en/"))
	assert.True(t, Differs("https://example.com", "https://example.com/en/"))
}
