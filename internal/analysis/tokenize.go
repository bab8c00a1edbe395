package analysis

import (
	"math"
	"regexp"
	"strings"
)

var (
	nonWord       = regexp.MustCompile(`\W+`)
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
)

// Words lowercases the text and splits it on non-word boundaries.
func Words(text string) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	words := parts[:0]
	for _, w := range parts {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Sentences splits on terminal punctuation, dropping empty fragments.
func Sentences(text string) []string {
	parts := sentenceBreak.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, s := range parts {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func termFrequencies(words []string) map[string]int {
	tf := make(map[string]int, len(words))
	for _, w := range words {
		tf[w]++
	}
	return tf
}

// significantWords keeps words longer than three characters, the ones
// worth comparing across sections and documents.
func significantWords(words []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words {
		if len(w) > 3 {
			set[w] = struct{}{}
		}
	}
	return set
}

// containsPhrase reports whether the lowercased text contains the
// phrase. Dictionary entries may be multi-word, so this is a substring
// check on the normalized text rather than a token lookup.
func containsPhrase(loweredText, phrase string) bool {
	return strings.Contains(loweredText, strings.ToLower(phrase))
}

// coverage is the ratio of dictionary phrases present in the text.
func coverage(loweredText string, phrases []string) float64 {
	if len(phrases) == 0 {
		return 1
	}
	hits := 0
	for _, p := range phrases {
		if containsPhrase(loweredText, p) {
			hits++
		}
	}
	return float64(hits) / float64(len(phrases))
}

// missingPhrases returns the dictionary phrases absent from the text.
func missingPhrases(loweredText string, phrases []string) []string {
	var missing []string
	for _, p := range phrases {
		if !containsPhrase(loweredText, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// clampScore rounds to an integer and pins it into [0, 100].
func clampScore(v float64) int {
	s := int(math.Round(v))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
