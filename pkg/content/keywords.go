package content

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Statistical keyword extraction over 1..3-word phrases. Scoring follows the
// usual unsupervised heuristics: frequent phrases that appear early in the
// text rank best, longer phrases get a boost so that multi-word terms can
// outrank their constituent words. Lower score means more relevant.

const (
	maxPhraseLen  = 3
	candidatePool = 20
	maxKeywords   = 15
)

var tokenRe = regexp.MustCompile(`[a-zA-Zа-яА-ЯёЁ][a-zA-Zа-яА-ЯёЁ'-]+`)

var stopwords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"from": true, "they": true, "will": true, "would": true, "there": true,
	"their": true, "what": true, "about": true, "which": true, "when": true,
	"your": true, "more": true, "been": true, "them": true, "than": true,
	"its": true, "into": true, "only": true, "other": true, "some": true,
	"also": true, "most": true, "over": true, "such": true, "where": true,
	// Russian
	"это": true, "как": true, "что": true, "или": true, "для": true,
	"его": true, "она": true, "они": true, "так": true, "все": true,
	"при": true, "еще": true, "уже": true, "был": true, "если": true,
	"чтобы": true, "когда": true, "только": true, "может": true, "более": true,
}

type candidate struct {
	display  string
	freq     int
	firstPos int
	words    int
}

func extractKeywords(text, title, h1, desc string) []models.Keyword {
	tokens := tokenRe.FindAllString(text, -1)
	if len(tokens) == 0 {
		return []models.Keyword{}
	}

	seen := make(map[string]*candidate)
	var ordered []*candidate
	for i := range tokens {
		for n := 1; n <= maxPhraseLen && i+n <= len(tokens); n++ {
			phrase := tokens[i : i+n]
			if !validPhrase(phrase) {
				continue
			}
			key := strings.ToLower(strings.Join(phrase, " "))
			if c, ok := seen[key]; ok {
				c.freq++
				continue
			}
			c := &candidate{
				display:  strings.Join(phrase, " "),
				freq:     1,
				firstPos: i,
				words:    n,
			}
			seen[key] = c
			ordered = append(ordered, c)
		}
	}

	total := float64(len(tokens))
	score := func(c *candidate) float64 {
		return (1.0 + float64(c.firstPos)/total) / (float64(c.freq*c.freq) * float64(c.words))
	}

	sortCandidates(ordered, score)

	// Containment dedup: a phrase already covered by a better-ranked one is
	// noise, and so is a fragment of it.
	var top []*candidate
	for _, c := range ordered {
		if len(top) >= candidatePool {
			break
		}
		lower := strings.ToLower(c.display)
		dup := false
		for _, t := range top {
			tl := strings.ToLower(t.display)
			if strings.Contains(tl, lower) || strings.Contains(lower, tl) {
				dup = true
				break
			}
		}
		if !dup {
			top = append(top, c)
		}
	}
	if len(top) > maxKeywords {
		top = top[:maxKeywords]
	}

	titleLower := strings.ToLower(title)
	h1Lower := strings.ToLower(h1)
	descLower := strings.ToLower(desc)

	keywords := make([]models.Keyword, 0, len(top))
	for _, c := range top {
		lower := strings.ToLower(c.display)
		keywords = append(keywords, models.Keyword{
			Keyword: c.display,
			Score:   math.Round(score(c)*10000) / 10000,
			InTitle: strings.Contains(titleLower, lower),
			InH1:    strings.Contains(h1Lower, lower),
			InDesc:  strings.Contains(descLower, lower),
		})
	}
	return keywords
}

// validPhrase rejects candidates with a stopword at either edge and
// single-character noise tokens.
func validPhrase(phrase []string) bool {
	first := strings.ToLower(phrase[0])
	last := strings.ToLower(phrase[len(phrase)-1])
	if stopwords[first] || stopwords[last] {
		return false
	}
	for _, w := range phrase {
		if len([]rune(w)) < 3 {
			return false
		}
	}
	return true
}

func sortCandidates(cs []*candidate, score func(*candidate) float64) {
	sort.SliceStable(cs, func(i, j int) bool {
		si, sj := score(cs[i]), score(cs[j])
		if si != sj {
			return si < sj
		}
		return cs[i].firstPos < cs[j].firstPos
	})
}
