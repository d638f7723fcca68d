// Package content analyzes the readable text of a page: keyword extraction,
// word density, readability scores and language detection.
package content

import (
	"regexp"
	"sort"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

var (
	cyrillicRe = regexp.MustCompile(`[а-яА-ЯёЁ]{3,}`)
	wordRe     = regexp.MustCompile(`[a-zA-Zа-яА-ЯёЁ]{3,}`)
)

// Analyze extracts the body text of a page and computes keywords,
// readability and word density. Title, description and H1 are used to
// annotate where each keyword already appears.
func Analyze(pageHTML, title, desc, h1 string) *models.ContentResult {
	bodyText := BodyText(pageHTML)
	if bodyText == "" {
		return &models.ContentResult{Keywords: []models.Keyword{}}
	}

	lang := "en"
	if cyrillicRe.MatchString(bodyText) {
		lang = "ru"
	}

	result := &models.ContentResult{
		WordCount: len(strings.Fields(bodyText)),
		Lang:      lang,
	}

	result.Keywords = extractKeywords(bodyText, title, h1, desc)
	result.Density = wordDensity(bodyText)

	readability := models.Readability{
		ReadingTimeSec: readingTime(bodyText),
	}
	if lang == "en" {
		readability.FleschEase = fleschReadingEase(bodyText)
		readability.FleschGrade = fleschKincaidGrade(bodyText)
		readability.GunningFog = gunningFog(bodyText)
	}
	result.Readability = readability

	return result
}

// BodyText returns the readable text of a page, preferring trafilatura's
// content extraction and falling back to a plain DOM text walk.
func BodyText(pageHTML string) string {
	result, err := trafilatura.Extract(strings.NewReader(pageHTML), trafilatura.Options{
		ExcludeComments: true,
	})
	if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
		return result.ContentText
	}
	return domText(pageHTML)
}

// domText walks the parsed document collecting text nodes, skipping script
// and style subtrees.
func domText(pageHTML string) string {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String())
}

// wordDensity returns the ten most frequent words of three letters or more
// with their share of the total, rounded to one decimal.
func wordDensity(text string) []models.WordDensity {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	total := len(words)
	if total == 0 {
		return nil
	}

	counts := make(map[string]int)
	order := make(map[string]int)
	for i, w := range words {
		if _, ok := counts[w]; !ok {
			order[w] = i
		}
		counts[w]++
	}

	unique := make([]string, 0, len(counts))
	for w := range counts {
		unique = append(unique, w)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return order[unique[i]] < order[unique[j]]
	})

	if len(unique) > 10 {
		unique = unique[:10]
	}
	density := make([]models.WordDensity, 0, len(unique))
	for _, w := range unique {
		density = append(density, models.WordDensity{
			Word:    w,
			Count:   counts[w],
			Density: round1(float64(counts[w]) / float64(total) * 100),
		})
	}
	return density
}

func round1(f float64) float64 {
	if f < 0 {
		return float64(int(f*10-0.5)) / 10
	}
	return float64(int(f*10+0.5)) / 10
}
