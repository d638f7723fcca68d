package audit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/fetch"
)

func findCheck(t *testing.T, result *models.AuditResult, name string) models.Check {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not in result", name)
	return models.Check{}
}

func testSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html lang="en"><head>
			<title>Test Page</title>
			<link rel="canonical" href="https://example.com/">
			<meta name="viewport" content="width=device-width">
			<meta property="og:title" content="Test Page">
			<script type="application/ld+json">{"@type": "Organization", "name": "Acme"}</script>
		</head><body>
			<h1>Welcome</h1>
			<a href="/about">About</a>
			<a href="/missing">Broken</a>
			<a href="#top">Anchor</a>
			<a href="mailto:x@example.com">Mail</a>
			<a href="https://elsewhere.example/">External</a>
			<img src="/a.png" alt="described">
			<img src="/b.png">
		</body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>about</body></html>")
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n\nUser-agent: GPTBot\nDisallow: /\n\nSitemap: /sitemap.xml\n")
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><urlset></urlset>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunFullBattery(t *testing.T) {
	srv := testSite(t)
	a := New(fetch.New(), 20)
	result := a.Run(srv.URL, Options{SkipSpeed: true, SkipContent: true})

	assert.Empty(t, result.LocaleURL, "page with title and JSON-LD is audited as-is")

	title := findCheck(t, result, "Title")
	assert.True(t, title.OK)
	assert.Equal(t, "Test Page", title.Value)

	desc := findCheck(t, result, "Meta description")
	assert.False(t, desc.OK)
	assert.Equal(t, "Missing meta description", desc.Hint)

	assert.True(t, findCheck(t, result, "H1").OK)
	assert.True(t, findCheck(t, result, "Canonical").OK)
	assert.True(t, findCheck(t, result, "Viewport").OK)
	assert.False(t, findCheck(t, result, "Hreflang").OK)
	assert.True(t, findCheck(t, result, "HTML lang attr").OK)

	assert.True(t, findCheck(t, result, "og:title").OK)
	assert.False(t, findCheck(t, result, "og:description").OK)
	assert.False(t, findCheck(t, result, "twitter:card").OK)

	jsonld := findCheck(t, result, "JSON-LD")
	assert.True(t, jsonld.OK)
	assert.Equal(t, "Organization", jsonld.Value)
	assert.True(t, findCheck(t, result, "Organization/WebSite").OK)

	robotsMeta := findCheck(t, result, "Robots meta")
	assert.True(t, robotsMeta.OK)
	assert.Equal(t, "default (index,follow)", robotsMeta.Value)
	assert.False(t, findCheck(t, result, "HTTPS").OK, "httptest serves plain http")
	assert.True(t, findCheck(t, result, "Googlebot allowed").OK)

	assert.True(t, findCheck(t, result, "robots.txt").OK)
	assert.True(t, findCheck(t, result, "sitemap.xml").OK)
	assert.True(t, findCheck(t, result, "Sitemap in robots.txt").OK)
	assert.False(t, findCheck(t, result, "Favicon").OK)

	assert.False(t, findCheck(t, result, "llms.txt").OK)
	assert.False(t, findCheck(t, result, "llms-full.txt").OK)

	aiBots := findCheck(t, result, "AI bots allowed")
	assert.False(t, aiBots.OK)
	assert.Equal(t, "Blocked: gptbot", aiBots.Value)

	assert.False(t, findCheck(t, result, "Markdown content").OK)
	assert.False(t, findCheck(t, result, "Rich schema").OK)

	links := findCheck(t, result, "Internal links")
	assert.False(t, links.OK)
	assert.Equal(t, fmt.Sprintf("1 broken: %s/missing (404)", srv.URL), links.Value)

	alts := findCheck(t, result, "Image alt tags")
	assert.False(t, alts.OK)
	assert.Equal(t, "1/2 missing", alts.Value)

	assert.Equal(t, 29, result.MaxScore)
	assert.Equal(t, 13, result.Score)
	assert.Equal(t, 44, result.Percent())
}

func TestRunUnreachable(t *testing.T) {
	a := New(fetch.New(), 20)
	result := a.Run("http://127.0.0.1:1/", Options{SkipSpeed: true, SkipContent: true})

	require.Len(t, result.Checks, 1)
	assert.Equal(t, "Accessible", result.Checks[0].Name)
	assert.False(t, result.Checks[0].OK)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 1, result.MaxScore)
}

func TestRunNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	a := New(fetch.New(), 20)
	result := a.Run(srv.URL, Options{SkipSpeed: true, SkipContent: true})

	require.Len(t, result.Checks, 1)
	assert.Equal(t, "HTTP 404", result.Checks[0].Value)
}

func TestRunLengthLimits(t *testing.T) {
	longTitle := strings.Repeat("t", 61)
	longDesc := strings.Repeat("d", 161)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><head>
			<title>%s</title>
			<meta name="description" content="%s">
			<script type="application/ld+json">{"@type": "WebSite"}</script>
		</head><body></body></html>`, longTitle, longDesc)
	}))
	defer srv.Close()

	a := New(fetch.New(), 20)
	result := a.Run(srv.URL, Options{SkipSpeed: true, SkipContent: true})

	title := findCheck(t, result, "Title")
	assert.False(t, title.OK, "present but over 60 chars fails")
	assert.Equal(t, "Too long (>60)", title.Hint)
	assert.Len(t, title.Value, 60, "value is truncated for display")

	desc := findCheck(t, result, "Meta description")
	assert.False(t, desc.OK, "present but over 160 chars fails")
	assert.Equal(t, "Too long (>160)", desc.Hint)
}

func TestRunLocaleSwap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><head><meta http-equiv="refresh" content="0; url=/en/"></head><body></body></html>`)
	})
	mux.HandleFunc("/en/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html lang="en"><head><title>English Landing</title></head><body><h1>Hello</h1></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := New(fetch.New(), 20)
	result := a.Run(srv.URL, Options{SkipSpeed: true, SkipContent: true})

	assert.Equal(t, srv.URL+"/en/", result.LocaleURL)
	title := findCheck(t, result, "Title")
	assert.True(t, title.OK)
	assert.Equal(t, "English Landing", title.Value, "checks grade the resolved locale page")
}

func TestHreflangSubChecks(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><head>
			<title>Multilang</title>
			<script type="application/ld+json">{"@type": "WebSite"}</script>
			<link rel="alternate" hreflang="x-default" href="%s/">
			<link rel="alternate" hreflang="en" href="%s/">
			<link rel="alternate" hreflang="de" href="/de/">
		</head><body></body></html>`, srvURL, srvURL)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	a := New(fetch.New(), 20)
	result := a.Run(srv.URL, Options{SkipSpeed: true, SkipContent: true})

	hreflang := findCheck(t, result, "Hreflang")
	assert.True(t, hreflang.OK)
	assert.Equal(t, "3 languages", hreflang.Value)
	assert.True(t, findCheck(t, result, "Hreflang x-default").OK)
	assert.True(t, findCheck(t, result, "Hreflang self-ref").OK)
	assert.False(t, findCheck(t, result, "Hreflang absolute URLs").OK, "/de/ is relative")
}

func TestInternalLinksCollection(t *testing.T) {
	html := `<html><body>
		<a href="/a">1</a>
		<a href="/a">dup</a>
		<a href="b/c">relative</a>
		<a href="#frag">skip</a>
		<a href="tel:+1234">skip</a>
		<a href="javascript:void(0)">skip</a>
		<a href="https://other.example/x">skip</a>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	links := internalLinks(doc, "https://example.com/dir/page", 20)
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/dir/b/c",
	}, links)

	capped := internalLinks(doc, "https://example.com/dir/page", 1)
	assert.Len(t, capped, 1)
}

func TestImageAltStats(t *testing.T) {
	html := `<html><body>
		<img src="a.png" alt="ok">
		<img src="b.png" alt="  ">
		<img src="c.png">
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	total, missing := imageAltStats(doc)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, missing)
}
