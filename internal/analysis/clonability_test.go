package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeClonabilityIdenticalToReference(t *testing.T) {
	report := AnalyzeClonability(referenceDocuments[0].Text)

	assert.Equal(t, "high", report.RiskLevel)
	assert.Greater(t, report.MaxSimilarity, 0.7)
	assert.LessOrEqual(t, report.OriginalityScore, 30)

	require.NotEmpty(t, report.Matches)
	assert.Equal(t, referenceDocuments[0].Name, report.Matches[0].Reference,
		"the matching reference must rank first")
}

func TestAnalyzeClonabilityOriginalText(t *testing.T) {
	text := "Today Jamie described a recurring dream about sailing boats and we " +
		"unpacked how the imagery connects to feelings about leaving home. " +
		"Jamie laughed twice, which is new, and asked to bring a journal next week."

	report := AnalyzeClonability(text)

	assert.GreaterOrEqual(t, report.OriginalityScore, 65)
	assert.Contains(t, []string{"minimal", "low"}, report.RiskLevel)
	assert.Zero(t, report.PlagiarismSignals.RepeatedPhraseCount)
}

func TestAnalyzeClonabilityScoreBounds(t *testing.T) {
	for _, text := range []string{"", "one", referenceDocuments[0].Text, strings.Repeat("note ", 2000)} {
		report := AnalyzeClonability(text)
		assert.GreaterOrEqual(t, report.OriginalityScore, 0)
		assert.LessOrEqual(t, report.OriginalityScore, 100)
		assert.GreaterOrEqual(t, report.MaxSimilarity, 0.0)
		assert.LessOrEqual(t, report.MaxSimilarity, 1.0)
	}
}

func TestDetectRepeatedPhrases(t *testing.T) {
	phrase := "client reported significant improvement this session"
	text := phrase + ". Later in the note, " + phrase + "."

	report := AnalyzeClonability(text)

	assert.Greater(t, report.PlagiarismSignals.RepeatedPhraseCount, 0)
	require.NotEmpty(t, report.PlagiarismSignals.RepeatedPhrases)
	assert.LessOrEqual(t, len(report.PlagiarismSignals.RepeatedPhrases), 5)
}

func TestDetectRepeatedPhrasesIgnoresShortWindows(t *testing.T) {
	// Repeated but under the minimum phrase length.
	text := "a b c d e. a b c d e. a b c d e."
	report := AnalyzeClonability(text)
	assert.Zero(t, report.PlagiarismSignals.RepeatedPhraseCount)
}

func TestComplexityMetrics(t *testing.T) {
	report := AnalyzeClonability("One two three. Four five six! Seven eight two?")

	assert.Equal(t, 3, report.Complexity.SentenceCount)
	assert.Equal(t, 9, report.Complexity.WordCount)
	assert.Equal(t, 8, report.Complexity.UniqueWordCount)
	assert.InDelta(t, 0.889, report.Complexity.VocabularyDiversity, 0.001)
}

func TestLCSRatio(t *testing.T) {
	a := []string{"the", "client", "reported", "anxiety"}
	b := []string{"the", "client", "denied", "anxiety"}
	assert.InDelta(t, 0.75, lcsRatio(a, b), 0.001)

	assert.Zero(t, lcsRatio(nil, b))
	assert.InDelta(t, 1.0, lcsRatio(a, a), 0.001)
}

func TestRiskLevelBands(t *testing.T) {
	assert.Equal(t, "high", riskLevel(0.71))
	assert.Equal(t, "medium", riskLevel(0.41))
	assert.Equal(t, "low", riskLevel(0.21))
	assert.Equal(t, "minimal", riskLevel(0.2))
	assert.Equal(t, "minimal", riskLevel(0))
}
