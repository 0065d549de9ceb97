package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/surveyforge/survey-service/internal/models"
)

// topWordLimit caps the word-frequency list in text analytics.
const topWordLimit = 30

// stopWords are common words excluded from word-frequency analytics.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "it": {},
	"this": {}, "that": {},
}

// TopWords tokenizes the given texts on whitespace and punctuation
// boundaries, lowercases, drops stop words, and returns the limit most
// frequent words by descending count. Ties keep first-seen order so the
// result is stable across runs.
func TopWords(texts []string, limit int) []models.WordCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, text := range texts {
		for _, token := range tokenize(text) {
			if _, stop := stopWords[token]; stop {
				continue
			}
			if _, seen := counts[token]; !seen {
				firstSeen[token] = order
				order++
			}
			counts[token]++
		}
	}

	words := make([]models.WordCount, 0, len(counts))
	for word, count := range counts {
		words = append(words, models.WordCount{Word: word, Count: count})
	}

	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return firstSeen[words[i].Word] < firstSeen[words[j].Word]
	})

	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
