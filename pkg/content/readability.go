package content

import (
	"math"
	"regexp"
	"strings"
)

// English readability formulas. Sentence and syllable counting use the
// standard approximations: sentences end on .!? runs, syllables are counted
// from vowel groups with a silent-e correction and a minimum of one per word.

var (
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	vowelRunRe = regexp.MustCompile(`[aeiouy]+`)
	letterRe   = regexp.MustCompile(`[a-zA-Z]`)
)

const msPerChar = 14.69

// readingTime estimates reading time in seconds from character count.
func readingTime(text string) float64 {
	return math.Round(float64(len([]rune(text)))*msPerChar/1000*100) / 100
}

func fleschReadingEase(text string) float64 {
	words, sentences, syllables := textCounts(text)
	if words == 0 || sentences == 0 {
		return 0
	}
	score := 206.835 - 1.015*(float64(words)/float64(sentences)) - 84.6*(float64(syllables)/float64(words))
	return math.Round(score*100) / 100
}

func fleschKincaidGrade(text string) float64 {
	words, sentences, syllables := textCounts(text)
	if words == 0 || sentences == 0 {
		return 0
	}
	grade := 0.39*(float64(words)/float64(sentences)) + 11.8*(float64(syllables)/float64(words)) - 15.59
	return math.Round(grade*100) / 100
}

func gunningFog(text string) float64 {
	tokens := strings.Fields(text)
	words := 0
	complexWords := 0
	for _, t := range tokens {
		w := cleanWord(t)
		if w == "" {
			continue
		}
		words++
		if syllableCount(w) >= 3 {
			complexWords++
		}
	}
	sentences := countSentences(text)
	if words == 0 || sentences == 0 {
		return 0
	}
	fog := 0.4 * (float64(words)/float64(sentences) + 100*float64(complexWords)/float64(words))
	return math.Round(fog*100) / 100
}

func textCounts(text string) (words, sentences, syllables int) {
	for _, t := range strings.Fields(text) {
		w := cleanWord(t)
		if w == "" {
			continue
		}
		words++
		syllables += syllableCount(w)
	}
	return words, countSentences(text), syllables
}

func countSentences(text string) int {
	n := len(sentenceRe.FindAllString(text, -1))
	if n == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return n
}

func cleanWord(token string) string {
	letters := letterRe.FindAllString(token, -1)
	return strings.ToLower(strings.Join(letters, ""))
}

func syllableCount(word string) int {
	count := len(vowelRunRe.FindAllString(word, -1))
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
