package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// auditCriterion is one named check within an audit category.
type auditCriterion struct {
	Name     string
	Keywords []string
	Required []string
	MaxScore int
}

type auditCategory struct {
	Name     string
	Label    string
	Weight   float64
	Criteria []auditCriterion
}

const (
	auditKeywordWeight  = 0.7
	auditRequiredWeight = 0.3

	// trainingTrigger: a category whose weakest criterion scores under
	// this percentage gets training recommendations attached.
	trainingTrigger = 70
)

var auditCategories = []auditCategory{
	{
		Name:   "documentation_completeness",
		Label:  "documentation completeness",
		Weight: 0.25,
		Criteria: []auditCriterion{
			{"client_identification", []string{"client name", "name", "date of birth", "identification"}, []string{"name"}, 20},
			{"session_information", []string{"date", "time", "duration", "session type", "location"}, []string{"date"}, 20},
			{"presenting_problem", []string{"presenting problem", "chief complaint", "reason for", "concern"}, nil, 20},
			{"clinical_observations", []string{"observed", "appearance", "behavior", "mental status", "affect"}, nil, 20},
			{"plan_documentation", []string{"plan", "goals", "next steps", "treatment plan"}, []string{"plan"}, 20},
		},
	},
	{
		Name:   "clinical_accuracy",
		Label:  "clinical accuracy",
		Weight: 0.25,
		Criteria: []auditCriterion{
			{"diagnosis_support", []string{"diagnosis", "criteria", "symptoms", "consistent with"}, nil, 25},
			{"symptom_documentation", []string{"reports", "symptom", "frequency", "severity", "duration"}, nil, 25},
			{"risk_documentation", []string{"risk", "suicidal", "homicidal", "safety", "harm"}, []string{"risk"}, 25},
			{"medication_accuracy", []string{"medication", "dosage", "prescribed", "administered", "side effects"}, nil, 25},
		},
	},
	{
		Name:   "documentation_quality",
		Label:  "documentation quality",
		Weight: 0.20,
		Criteria: []auditCriterion{
			{"clarity", []string{"specific", "described", "detailed", "noted"}, nil, 25},
			{"objectivity", []string{"observed", "reported", "stated", "measured"}, nil, 25},
			{"timeliness", []string{"date", "time", "session date", "completed"}, nil, 25},
			{"professional_language", []string{"client", "clinician", "therapist", "treatment"}, nil, 25},
		},
	},
	{
		Name:   "compliance_standards",
		Label:  "compliance standards",
		Weight: 0.15,
		Criteria: []auditCriterion{
			{"privacy_compliance", []string{"confidential", "authorization", "consent", "privacy"}, nil, 34},
			{"billing_compliance", []string{"billing", "units", "medical necessity", "service code"}, nil, 33},
			{"regulatory_compliance", []string{"license", "supervision", "mandated", "regulation"}, nil, 33},
		},
	},
	{
		Name:   "professional_standards",
		Label:  "professional standards",
		Weight: 0.15,
		Criteria: []auditCriterion{
			{"ethical_documentation", []string{"ethical", "boundaries", "informed consent", "scope of practice"}, nil, 34},
			{"collaboration", []string{"referral", "coordination", "consultation", "collaborat"}, nil, 33},
			{"cultural_considerations", []string{"cultural", "language", "preference", "values"}, nil, 33},
		},
	},
}

// TrainingResource is a static catalog entry recommended when a
// category underperforms.
type TrainingResource struct {
	Title  string `json:"title"`
	Level  string `json:"level"`
	Format string `json:"format"`
}

// trainingCatalog maps category name to the available resources per
// difficulty level.
var trainingCatalog = map[string]map[string][]TrainingResource{
	"documentation_completeness": {
		"Beginner":     {{"Clinical Documentation Fundamentals", "Beginner", "course"}, {"Anatomy of a Complete Progress Note", "Beginner", "article"}},
		"Intermediate": {{"Structured Note Writing Workshop", "Intermediate", "workshop"}},
		"Advanced":     {{"Documentation Audit Readiness", "Advanced", "course"}},
	},
	"clinical_accuracy": {
		"Beginner":     {{"Introduction to Diagnostic Documentation", "Beginner", "course"}},
		"Intermediate": {{"Documenting Symptoms and Risk", "Intermediate", "workshop"}, {"Medication Documentation Essentials", "Intermediate", "article"}},
		"Advanced":     {{"Advanced Clinical Formulation Writing", "Advanced", "course"}},
	},
	"documentation_quality": {
		"Beginner":     {{"Objective Language in Clinical Notes", "Beginner", "article"}},
		"Intermediate": {{"Writing Clear and Defensible Notes", "Intermediate", "course"}},
		"Advanced":     {{"Quality Review for Senior Clinicians", "Advanced", "workshop"}},
	},
	"compliance_standards": {
		"Beginner":     {{"Privacy and Consent Basics", "Beginner", "course"}},
		"Intermediate": {{"Billing Documentation Compliance", "Intermediate", "course"}},
		"Advanced":     {{"Regulatory Deep Dive for Supervisors", "Advanced", "workshop"}},
	},
	"professional_standards": {
		"Beginner":     {{"Ethics of Clinical Record Keeping", "Beginner", "course"}},
		"Intermediate": {{"Documenting Collaboration and Referrals", "Intermediate", "article"}},
		"Advanced":     {{"Cultural Formulation in Documentation", "Advanced", "course"}},
	},
}

// AuditReport is the overall audit outcome with per-category
// breakdown, prioritized suggestions and training recommendations.
type AuditReport struct {
	DocumentID              string                   `json:"document_id,omitempty"`
	OverallScore            int                      `json:"overall_score"`
	Breakdown               map[string]int           `json:"breakdown"`
	CriteriaScores          map[string]int           `json:"criteria_scores"`
	Feedback                string                   `json:"feedback"`
	Suggestions             []string                 `json:"suggestions"`
	TrainingRecommendations []TrainingRecommendation `json:"training_recommendations"`
}

type TrainingRecommendation struct {
	Category  string             `json:"category"`
	Resources []TrainingResource `json:"resources"`
}

type scoredCriterion struct {
	category string
	label    string
	name     string
	pct      int
}

// AnalyzeAudit evaluates the five weighted audit categories and
// derives improvement suggestions and training recommendations from
// the weakest criteria.
func AnalyzeAudit(text, documentID string) *AuditReport {
	lowered := strings.ToLower(text)

	report := &AuditReport{
		DocumentID:     documentID,
		Breakdown:      make(map[string]int, len(auditCategories)),
		CriteriaScores: make(map[string]int),
	}

	var overall float64
	var allCriteria []scoredCriterion

	for _, cat := range auditCategories {
		earned := 0.0
		max := 0

		for _, crit := range cat.Criteria {
			keywordCov := coverage(lowered, crit.Keywords)
			requiredCov := coverage(lowered, crit.Required)
			score := float64(crit.MaxScore) * (auditKeywordWeight*keywordCov + auditRequiredWeight*requiredCov)

			earned += score
			max += crit.MaxScore

			pct := clampScore(100 * score / float64(crit.MaxScore))
			report.CriteriaScores[crit.Name] = pct
			allCriteria = append(allCriteria, scoredCriterion{
				category: cat.Name,
				label:    cat.Label,
				name:     crit.Name,
				pct:      pct,
			})
		}

		catScore := 100 * earned / float64(max)
		report.Breakdown[cat.Name] = clampScore(catScore)
		overall += cat.Weight * catScore
	}

	report.OverallScore = clampScore(overall)
	report.Feedback = auditFeedback(report.OverallScore)
	report.Suggestions = auditSuggestions(allCriteria)
	report.TrainingRecommendations = trainingRecommendations(allCriteria)
	return report
}

func auditFeedback(score int) string {
	switch {
	case score >= 90:
		return "Excellent. This documentation would hold up well in an audit."
	case score >= 75:
		return "Good overall, with a few areas an auditor would flag."
	case score >= 60:
		return "Moderate audit readiness. Address the weakest criteria before submission."
	default:
		return "Poor audit readiness. Substantial rework of this documentation is needed."
	}
}

// auditSuggestions emits up to ten improvements, weakest criteria first.
func auditSuggestions(criteria []scoredCriterion) []string {
	sorted := make([]scoredCriterion, len(criteria))
	copy(sorted, criteria)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].pct < sorted[j].pct })

	var suggestions []string
	for _, c := range sorted {
		if c.pct >= 100 {
			break
		}
		suggestions = append(suggestions,
			fmt.Sprintf("Improve %s (%s): currently at %d%%.", strings.ReplaceAll(c.name, "_", " "), c.label, c.pct))
		if len(suggestions) == 10 {
			break
		}
	}
	return suggestions
}

// trainingRecommendations attaches resources for every category whose
// weakest criterion falls under the trigger. The resource level rises
// with the score: weak performance starts at introductory material.
func trainingRecommendations(criteria []scoredCriterion) []TrainingRecommendation {
	lowest := make(map[string]int)
	for _, c := range criteria {
		if cur, ok := lowest[c.category]; !ok || c.pct < cur {
			lowest[c.category] = c.pct
		}
	}

	var recs []TrainingRecommendation
	for _, cat := range auditCategories {
		pct, ok := lowest[cat.Name]
		if !ok || pct >= trainingTrigger {
			continue
		}

		level := resourceLevel(pct)
		resources := trainingCatalog[cat.Name][level]
		if len(resources) == 0 {
			continue
		}
		if len(resources) > 2 {
			resources = resources[:2]
		}
		recs = append(recs, TrainingRecommendation{Category: cat.Name, Resources: resources})
	}
	return recs
}

func resourceLevel(pct int) string {
	switch {
	case pct <= 40:
		return "Beginner"
	case pct <= 60:
		return "Intermediate"
	default:
		return "Advanced"
	}
}
