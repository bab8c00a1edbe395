package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Similarity measure weights. Word-set and TF-cosine carry more weight
// than the sequence-sensitive measures.
const (
	weightWordJaccard    = 0.30
	weightTFCosine       = 0.30
	weightLCSRatio       = 0.20
	weightTrigramJaccard = 0.20
)

// lcsWordCap bounds the quadratic LCS computation on long documents.
const lcsWordCap = 800

// minRepeatedPhraseLen is the shortest exact phrase counted as a
// plagiarism-pattern signal when it occurs more than once.
const minRepeatedPhraseLen = 21

// ClonabilityReport scores how original a document is relative to the
// reference corpus.
type ClonabilityReport struct {
	OriginalityScore  int               `json:"originality_score"`
	RiskLevel         string            `json:"risk_level"`
	MaxSimilarity     float64           `json:"max_similarity"`
	Matches           []ReferenceMatch  `json:"matches"`
	PlagiarismSignals PlagiarismSignals `json:"plagiarism_signals"`
	Complexity        TextComplexity    `json:"complexity"`
	Feedback          string            `json:"feedback"`
	Recommendations   []string          `json:"recommendations"`
}

type ReferenceMatch struct {
	Reference  string              `json:"reference"`
	Similarity float64             `json:"similarity"`
	Breakdown  SimilarityBreakdown `json:"breakdown"`
}

type SimilarityBreakdown struct {
	WordJaccard    float64 `json:"word_jaccard"`
	TFCosine       float64 `json:"tf_cosine"`
	LCSRatio       float64 `json:"lcs_ratio"`
	TrigramJaccard float64 `json:"trigram_jaccard"`
}

type PlagiarismSignals struct {
	RepeatedPhraseCount int      `json:"repeated_phrase_count"`
	RepeatedPhrases     []string `json:"repeated_phrases,omitempty"`
}

type TextComplexity struct {
	SentenceCount       int     `json:"sentence_count"`
	WordCount           int     `json:"word_count"`
	UniqueWordCount     int     `json:"unique_word_count"`
	VocabularyDiversity float64 `json:"vocabulary_diversity"`
}

// AnalyzeClonability compares the text against the reference corpus
// with four string-similarity measures and reports an originality
// score: 100 minus the strongest combined similarity.
func AnalyzeClonability(text string) *ClonabilityReport {
	words := Words(text)
	sentences := Sentences(text)

	report := &ClonabilityReport{
		Matches:    make([]ReferenceMatch, 0, len(referenceDocuments)),
		Complexity: complexity(words, sentences),
	}

	var maxSim float64
	for _, ref := range referenceDocuments {
		breakdown := similarityBreakdown(text, words, ref.Text)
		combined := weightWordJaccard*breakdown.WordJaccard +
			weightTFCosine*breakdown.TFCosine +
			weightLCSRatio*breakdown.LCSRatio +
			weightTrigramJaccard*breakdown.TrigramJaccard
		combined = round3(combined)

		report.Matches = append(report.Matches, ReferenceMatch{
			Reference:  ref.Name,
			Similarity: combined,
			Breakdown:  breakdown,
		})
		if combined > maxSim {
			maxSim = combined
		}
	}

	sort.Slice(report.Matches, func(i, j int) bool {
		return report.Matches[i].Similarity > report.Matches[j].Similarity
	})

	report.MaxSimilarity = maxSim
	report.OriginalityScore = clampScore(100 - math.Round(maxSim*100))
	report.RiskLevel = riskLevel(maxSim)
	report.PlagiarismSignals = detectRepeatedPhrases(words)
	report.Feedback = clonabilityFeedback(report)
	report.Recommendations = clonabilityRecommendations(report)
	return report
}

func similarityBreakdown(text string, words []string, refText string) SimilarityBreakdown {
	refWords := Words(refText)
	return SimilarityBreakdown{
		WordJaccard:    round3(jaccard(wordSet(words), wordSet(refWords))),
		TFCosine:       round3(tfCosine(termFrequencies(words), termFrequencies(refWords))),
		LCSRatio:       round3(lcsRatio(words, refWords)),
		TrigramJaccard: round3(jaccard(charTrigrams(text), charTrigrams(refText))),
	}
}

func riskLevel(similarity float64) string {
	switch {
	case similarity > 0.7:
		return "high"
	case similarity > 0.4:
		return "medium"
	case similarity > 0.2:
		return "low"
	default:
		return "minimal"
	}
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tfCosine(a, b map[string]int) float64 {
	var dot, normA, normB float64
	for term, fa := range a {
		normA += float64(fa) * float64(fa)
		if fb, ok := b[term]; ok {
			dot += float64(fa) * float64(fb)
		}
	}
	for _, fb := range b {
		normB += float64(fb) * float64(fb)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// lcsRatio is the longest common word subsequence over the longer
// sequence length. Inputs are capped to bound the quadratic table.
func lcsRatio(a, b []string) float64 {
	if len(a) > lcsWordCap {
		a = a[:lcsWordCap]
	}
	if len(b) > lcsWordCap {
		b = b[:lcsWordCap]
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(prev[len(b)]) / float64(longest)
}

func charTrigrams(text string) map[string]struct{} {
	normalized := []rune(strings.ToLower(nonWord.ReplaceAllString(text, " ")))
	grams := make(map[string]struct{})
	for i := 0; i+3 <= len(normalized); i++ {
		grams[string(normalized[i:i+3])] = struct{}{}
	}
	return grams
}

// detectRepeatedPhrases counts exact word-window phrases of at least
// minRepeatedPhraseLen characters that occur more than once.
func detectRepeatedPhrases(words []string) PlagiarismSignals {
	const window = 5
	counts := make(map[string]int)
	for i := 0; i+window <= len(words); i++ {
		phrase := strings.Join(words[i:i+window], " ")
		if len(phrase) >= minRepeatedPhraseLen {
			counts[phrase]++
		}
	}

	var repeated []string
	for phrase, n := range counts {
		if n > 1 {
			repeated = append(repeated, phrase)
		}
	}
	sort.Strings(repeated)

	signals := PlagiarismSignals{RepeatedPhraseCount: len(repeated)}
	if len(repeated) > 5 {
		repeated = repeated[:5]
	}
	signals.RepeatedPhrases = repeated
	return signals
}

func complexity(words, sentences []string) TextComplexity {
	unique := wordSet(words)
	c := TextComplexity{
		SentenceCount:   len(sentences),
		WordCount:       len(words),
		UniqueWordCount: len(unique),
	}
	if len(words) > 0 {
		c.VocabularyDiversity = round3(float64(len(unique)) / float64(len(words)))
	}
	return c
}

func clonabilityFeedback(r *ClonabilityReport) string {
	switch r.RiskLevel {
	case "high":
		return "This document closely mirrors template language. Large portions appear copied rather than written for this client."
	case "medium":
		return "Noticeable overlap with template language. Several passages should be rewritten to reflect this client's presentation."
	case "low":
		return "Mostly original documentation with limited template overlap."
	default:
		return "Documentation appears original."
	}
}

func clonabilityRecommendations(r *ClonabilityReport) []string {
	var recs []string
	if r.MaxSimilarity > 0.4 {
		recs = append(recs, "Replace template phrasing with client-specific observations and direct quotes.")
	}
	if r.PlagiarismSignals.RepeatedPhraseCount > 0 {
		recs = append(recs, fmt.Sprintf("Reword the %d phrase(s) repeated verbatim within the document.", r.PlagiarismSignals.RepeatedPhraseCount))
	}
	if r.Complexity.VocabularyDiversity > 0 && r.Complexity.VocabularyDiversity < 0.3 {
		recs = append(recs, "Vocabulary is repetitive; vary the language to describe session content precisely.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep documenting in your own words with session-specific detail.")
	}
	return recs
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
