package analysis

import (
	"fmt"
	"strings"
)

// integrityCategory is one scored dimension of documentation quality:
// a keyword dictionary with a required-phrase subset and a weight in
// the overall blend.
type integrityCategory struct {
	Name     string
	Label    string
	Weight   float64
	Keywords []string
	Required []string
}

// keyword coverage vs required-phrase coverage blend within a category.
const (
	integrityKeywordWeight  = 0.6
	integrityRequiredWeight = 0.4
)

var integrityCategories = []integrityCategory{
	{
		Name:   "soap_structure",
		Label:  "SOAP structure",
		Weight: 0.35,
		Keywords: []string{
			"subjective", "reports", "states", "describes",
			"objective", "observed", "mental status", "appearance", "affect",
			"assessment", "diagnosis", "impression", "progress",
			"plan", "goals", "intervention", "follow-up",
		},
		Required: []string{"subjective", "objective", "assessment", "plan"},
	},
	{
		Name:   "documentation_standards",
		Label:  "documentation standards",
		Weight: 0.20,
		Keywords: []string{
			"date", "time", "duration", "signature", "credentials",
			"client name", "date of birth", "informed consent", "session",
		},
		Required: []string{"date", "signature"},
	},
	{
		Name:   "safety_standards",
		Label:  "safety standards",
		Weight: 0.25,
		Keywords: []string{
			"risk assessment", "suicidal ideation", "homicidal ideation",
			"safety plan", "self-harm", "crisis", "danger to self", "danger to others",
		},
		Required: []string{"risk"},
	},
	{
		Name:   "quality_indicators",
		Label:  "quality indicators",
		Weight: 0.20,
		Keywords: []string{
			"measurable", "specific", "progress toward", "evidence-based",
			"rationale", "clinical reasoning", "response to treatment", "outcome",
		},
	},
}

// IntegrityReport scores adherence to clinical documentation structure
// and standards.
type IntegrityReport struct {
	OverallScore    int            `json:"overall_score"`
	Breakdown       map[string]int `json:"breakdown"`
	MissingElements []string       `json:"missing_elements"`
	Feedback        string         `json:"feedback"`
	Recommendations []string       `json:"recommendations"`
}

// AnalyzeIntegrity scores the text against the SOAP-structure,
// documentation-standards, safety-standards and quality-indicator
// dictionaries and blends them into one weighted score.
func AnalyzeIntegrity(text string) *IntegrityReport {
	lowered := strings.ToLower(text)

	report := &IntegrityReport{
		Breakdown: make(map[string]int, len(integrityCategories)),
	}

	var overall float64
	for _, cat := range integrityCategories {
		keywordCov := coverage(lowered, cat.Keywords)
		requiredCov := coverage(lowered, cat.Required)

		score := 100 * (integrityKeywordWeight*keywordCov + integrityRequiredWeight*requiredCov)
		report.Breakdown[cat.Name] = clampScore(score)
		overall += cat.Weight * score

		for _, missing := range missingPhrases(lowered, cat.Required) {
			report.MissingElements = append(report.MissingElements,
				fmt.Sprintf("%s: %q not documented", cat.Label, missing))
		}
	}

	report.OverallScore = clampScore(overall)
	report.Feedback = integrityFeedback(report.OverallScore)
	report.Recommendations = integrityRecommendations(report)
	return report
}

func integrityFeedback(score int) string {
	switch {
	case score >= 90:
		return "Excellent clinical documentation. Structure and standards are consistently met."
	case score >= 75:
		return "Good documentation with minor gaps against clinical standards."
	case score >= 60:
		return "Moderate documentation quality. Several structural elements need attention."
	default:
		return "Weak documentation. Core structure and required elements are missing."
	}
}

func integrityRecommendations(r *IntegrityReport) []string {
	var recs []string
	for _, cat := range integrityCategories {
		if r.Breakdown[cat.Name] < 60 {
			recs = append(recs, fmt.Sprintf("Strengthen %s coverage in the note.", cat.Label))
		}
	}
	if len(r.MissingElements) > 0 {
		recs = append(recs, "Document all required elements before signing the note.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain the current documentation structure.")
	}
	return recs
}
