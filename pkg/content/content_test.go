package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageDetection(t *testing.T) {
	en := Analyze("<html><body><p>Search engine optimization helps websites rank better in organic results.</p></body></html>", "", "", "")
	assert.Equal(t, "en", en.Lang)

	ru := Analyze("<html><body><p>Поисковая оптимизация помогает сайтам занимать высокие позиции.</p></body></html>", "", "", "")
	assert.Equal(t, "ru", ru.Lang)
	assert.Zero(t, ru.Readability.FleschEase, "english formulas do not apply to russian text")
	assert.NotZero(t, ru.Readability.ReadingTimeSec, "reading time is language independent")
}

func TestAnalyzeEmptyPage(t *testing.T) {
	result := Analyze("<html><body></body></html>", "", "", "")
	assert.Empty(t, result.Keywords)
	assert.Zero(t, result.WordCount)
}

func TestKeywordAnnotations(t *testing.T) {
	body := "Keyword research matters. Good keyword research saves time. " +
		"Start keyword research early. Solid keyword research compounds. " +
		"Teams prioritize keyword research today. Everything else varies wildly."
	html := "<html><body><p>" + body + "</p></body></html>"

	result := Analyze(html, "Keyword Research Guide", "Keyword Research", "Learn keyword research")
	require.NotEmpty(t, result.Keywords)

	best := result.Keywords[0]
	assert.True(t, strings.EqualFold(best.Keyword, "keyword research"),
		"most repeated phrase ranks first, got %q", best.Keyword)
	assert.True(t, best.InTitle)
	assert.True(t, best.InH1)
	assert.True(t, best.InDesc)
	assert.LessOrEqual(t, len(result.Keywords), 15)
}

func TestKeywordScoresAscending(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("link building improves domain authority over time. ", 8) + "</p></body></html>"
	result := Analyze(html, "", "", "")
	require.NotEmpty(t, result.Keywords)
	for i := 1; i < len(result.Keywords); i++ {
		assert.LessOrEqual(t, result.Keywords[i-1].Score, result.Keywords[i].Score,
			"keywords are ordered best (lowest score) first")
	}
}

func TestWordDensity(t *testing.T) {
	density := wordDensity("apple apple apple banana banana cherry")
	require.Len(t, density, 3)
	assert.Equal(t, "apple", density[0].Word)
	assert.Equal(t, 3, density[0].Count)
	assert.InDelta(t, 50.0, density[0].Density, 0.01)
	assert.Equal(t, "banana", density[1].Word)
	assert.InDelta(t, 33.3, density[1].Density, 0.01)
}

func TestWordDensityIgnoresShortWords(t *testing.T) {
	density := wordDensity("go is ok but optimization matters")
	for _, d := range density {
		assert.GreaterOrEqual(t, len([]rune(d.Word)), 3)
	}
}

func TestSyllableCount(t *testing.T) {
	tests := map[string]int{
		"cat":      1,
		"hello":    2,
		"syllable": 3,
		"the":      1,
		"create":   2,
	}
	for word, want := range tests {
		assert.Equal(t, want, syllableCount(word), word)
	}
}

func TestFleschEaseSimpleVsComplex(t *testing.T) {
	simple := "The cat sat. The dog ran. The sun is out."
	dense := "Notwithstanding considerable organizational impediments, the implementation of comprehensive optimization methodologies necessitates interdisciplinary collaboration."
	assert.Greater(t, fleschReadingEase(simple), fleschReadingEase(dense))
	assert.Less(t, fleschKincaidGrade(simple), fleschKincaidGrade(dense))
	assert.Less(t, gunningFog(simple), gunningFog(dense))
}

func TestReadingTime(t *testing.T) {
	text := strings.Repeat("a", 1000)
	assert.InDelta(t, 14.69, readingTime(text), 0.01)
}

func TestDomTextFallbackSkipsScripts(t *testing.T) {
	text := domText(`<html><body><script>var x = "hidden";</script><p>visible words</p></body></html>`)
	assert.Contains(t, text, "visible words")
	assert.NotContains(t, text, "hidden")
}
