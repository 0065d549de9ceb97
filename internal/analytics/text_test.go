package analytics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopWords_CountsAndLowercases(t *testing.T) {
	words := TopWords([]string{
		"Great service",
		"GREAT support",
		"great great value",
	}, topWordLimit)

	require.NotEmpty(t, words)
	assert.Equal(t, "great", words[0].Word)
	assert.Equal(t, 4, words[0].Count)
}

func TestTopWords_SplitsOnPunctuation(t *testing.T) {
	words := TopWords([]string{"fast,reliable;cheap! fast?reliable."}, topWordLimit)

	counts := map[string]int{}
	for _, wc := range words {
		counts[wc.Word] = wc.Count
	}
	assert.Equal(t, 2, counts["fast"])
	assert.Equal(t, 2, counts["reliable"])
	assert.Equal(t, 1, counts["cheap"])
}

func TestTopWords_KeepsApostrophes(t *testing.T) {
	words := TopWords([]string{"don't don't stop"}, topWordLimit)

	require.Len(t, words, 2)
	assert.Equal(t, "don't", words[0].Word)
	assert.Equal(t, 2, words[0].Count)
}

func TestTopWords_ExcludesStopWords(t *testing.T) {
	words := TopWords([]string{
		"the quick fox and the lazy dog in a field",
	}, topWordLimit)

	for _, wc := range words {
		assert.NotContains(t, []string{"the", "and", "in", "a"}, wc.Word)
	}
}

func TestTopWords_TieBreakIsFirstSeen(t *testing.T) {
	// zebra appears before apple; same count, so zebra must sort first even
	// though apple wins alphabetically.
	words := TopWords([]string{"zebra apple", "zebra apple"}, topWordLimit)

	require.Len(t, words, 2)
	assert.Equal(t, "zebra", words[0].Word)
	assert.Equal(t, "apple", words[1].Word)
}

func TestTopWords_RespectsLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		// word00 appears 50 times, word01 49 times, and so on.
		for j := i; j < 50; j++ {
			fmt.Fprintf(&sb, "word%02d ", i)
		}
	}

	words := TopWords([]string{sb.String()}, topWordLimit)

	require.Len(t, words, topWordLimit)
	assert.Equal(t, "word00", words[0].Word)
	assert.Equal(t, 50, words[0].Count)
	assert.Equal(t, "word29", words[topWordLimit-1].Word)
}

func TestTopWords_EmptyInput(t *testing.T) {
	assert.Empty(t, TopWords(nil, topWordLimit))
	assert.Empty(t, TopWords([]string{"", "   ", "the and or"}, topWordLimit))
}
