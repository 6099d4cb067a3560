package chatbot

import "strings"

const (
	// matchThreshold is the score a candidate must strictly exceed.
	matchThreshold = 0.4
	// domainTermBonus is added per clinical term shared by query and question.
	domainTermBonus = 0.2
)

var domainTerms = []string{
	"melanoma", "basal", "carcinoma", "squamous", "skin", "cancer",
	"mole", "lesion", "sunscreen", "spf", "uv", "abcde",
}

// Match is the best catalog entry found for a query.
type Match struct {
	Entry FAQEntry
	Index int
	Score float64
}

// Matcher scores catalog questions against normalized queries.
type Matcher struct {
	entries []indexedQuestion
}

type indexedQuestion struct {
	entry      FAQEntry
	normalized string
	tokens     map[string]struct{}
}

// NewMatcher pre-normalizes every catalog question.
func NewMatcher(catalog *Catalog) *Matcher {
	entries := make([]indexedQuestion, 0, len(catalog.FAQs))
	for _, entry := range catalog.FAQs {
		normalized := Normalize(entry.Question)
		entries = append(entries, indexedQuestion{
			entry:      entry,
			normalized: normalized,
			tokens:     tokenSet(normalized),
		})
	}
	return &Matcher{entries: entries}
}

// Best returns the highest scoring entry for an already normalized query.
// ok is false when no entry clears the confidence threshold.
func (m *Matcher) Best(normalizedQuery string) (Match, bool) {
	queryTokens := tokenSet(normalizedQuery)
	best := Match{Index: -1}
	for i, candidate := range m.entries {
		score := overlapScore(queryTokens, candidate.tokens) + termBonus(normalizedQuery, candidate.normalized)
		if score > best.Score {
			best = Match{Entry: candidate.entry, Index: i, Score: score}
		}
	}
	if best.Index < 0 || !confident(best.Score) {
		return Match{Score: best.Score, Index: -1}, false
	}
	return best, true
}

func overlapScore(query, question map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	common := 0
	for token := range query {
		if _, ok := question[token]; ok {
			common++
		}
	}
	return float64(common) / float64(len(query))
}

func termBonus(query, question string) float64 {
	var bonus float64
	for _, term := range domainTerms {
		if strings.Contains(query, term) && strings.Contains(question, term) {
			bonus += domainTermBonus
		}
	}
	return bonus
}

func confident(score float64) bool {
	return score > matchThreshold
}
