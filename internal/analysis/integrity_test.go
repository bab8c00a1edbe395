package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeNote = `Date: 2026-01-15, session duration 50 minutes.
Subjective: client reports improved sleep and states anxiety is lower. Client describes progress at work.
Objective: observed calm appearance, affect congruent, mental status within normal limits.
Assessment: diagnosis remains generalized anxiety disorder, impression of steady progress.
Plan: continue weekly sessions, goals reviewed, intervention adjusted, follow-up next week.
Client arrived on time.
Risk assessment: client denies suicidal ideation and homicidal ideation, no safety plan changes, no self-harm.
Client is not a danger to self or danger to others; no crisis indicators present.
Measurable progress toward specific treatment goals noted, with clinical reasoning documented.
Evidence-based rationale recorded and response to treatment was positive with good outcome.
Informed consent on file. Client name and date of birth verified. Signature and credentials below.`

func TestAnalyzeIntegrityCompleteNote(t *testing.T) {
	report := AnalyzeIntegrity(completeNote)

	assert.GreaterOrEqual(t, report.OverallScore, 90)
	assert.Empty(t, report.MissingElements)
	for name, score := range report.Breakdown {
		assert.GreaterOrEqual(t, score, 80, "category %s unexpectedly low", name)
	}
}

func TestAnalyzeIntegrityEmptyText(t *testing.T) {
	report := AnalyzeIntegrity("")

	assert.Less(t, report.OverallScore, 60)
	assert.NotEmpty(t, report.MissingElements)
	assert.Contains(t, report.MissingElements, `SOAP structure: "subjective" not documented`)
	assert.Contains(t, report.MissingElements, `documentation standards: "signature" not documented`)
	assert.Contains(t, report.MissingElements, `safety standards: "risk" not documented`)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAnalyzeIntegrityPartialNote(t *testing.T) {
	partial := "Subjective: client reports feeling anxious. Objective: observed restless. Plan: weekly therapy."
	report := AnalyzeIntegrity(partial)

	complete := AnalyzeIntegrity(completeNote)
	assert.Less(t, report.OverallScore, complete.OverallScore)
	assert.Contains(t, report.MissingElements, `SOAP structure: "assessment" not documented`)
}

func TestAnalyzeIntegrityBreakdownBounds(t *testing.T) {
	for _, text := range []string{"", "plan", completeNote} {
		report := AnalyzeIntegrity(text)
		require.Len(t, report.Breakdown, 4)
		for name, score := range report.Breakdown {
			assert.GreaterOrEqual(t, score, 0, name)
			assert.LessOrEqual(t, score, 100, name)
		}
		assert.GreaterOrEqual(t, report.OverallScore, 0)
		assert.LessOrEqual(t, report.OverallScore, 100)
	}
}

func TestIntegrityFeedbackBands(t *testing.T) {
	assert.Contains(t, integrityFeedback(95), "Excellent")
	assert.Contains(t, integrityFeedback(80), "Good")
	assert.Contains(t, integrityFeedback(65), "Moderate")
	assert.Contains(t, integrityFeedback(30), "Weak")
}
