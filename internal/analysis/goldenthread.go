package analysis

import (
	"fmt"
	"strings"
)

// GoldenThreadPolicy holds the compliance cutoffs. Different audit
// regimes use different thresholds, so they stay configurable instead
// of being baked into the scorer.
type GoldenThreadPolicy struct {
	MinScore    int `json:"min_score" yaml:"min_score"`
	MinSections int `json:"min_sections" yaml:"min_sections"`
}

func DefaultGoldenThreadPolicy() GoldenThreadPolicy {
	return GoldenThreadPolicy{MinScore: 70, MinSections: 5}
}

// documentSection is one recognizable clinical note section.
type documentSection struct {
	Name     string
	Keywords []string
}

var goldenThreadSections = []documentSection{
	{"chiefComplaint", []string{"chief complaint", "presenting problem", "reason for visit", "presents with", "complains of"}},
	{"historyPresentIllness", []string{"history of present illness", "history", "onset", "duration", "course of"}},
	{"examination", []string{"examination", "mental status", "vital signs", "observed", "appearance"}},
	{"assessment", []string{"assessment", "diagnosis", "impression", "clinical formulation"}},
	{"plan", []string{"plan", "treatment plan", "goals", "recommend"}},
	{"interventions", []string{"intervention", "administered", "provided", "implemented", "initiated", "therapy"}},
	{"response", []string{"response", "tolerated", "improvement", "outcome"}},
	{"followUp", []string{"follow-up", "follow up", "next appointment", "return", "monitor"}},
}

type connectionKind string

const (
	kindDiagnostic         connectionKind = "diagnostic"
	kindTherapeutic        connectionKind = "therapeutic"
	kindActionIntervention connectionKind = "action_intervention"
)

// typeKeywords back the type-specific strength heuristic per
// connection kind.
var typeKeywords = map[connectionKind][]string{
	kindDiagnostic:         {"diagnosis", "symptom", "finding", "indicates", "consistent", "presents"},
	kindTherapeutic:        {"treatment", "therapy", "medication", "goal", "address", "manage"},
	kindActionIntervention: {"administered", "completed", "performed", "implemented", "started", "provided", "monitor"},
}

// threadConnection is a directed link between two sections that a
// well-threaded note is expected to carry.
type threadConnection struct {
	From   string
	To     string
	Weight int
	Kind   connectionKind
}

var goldenThreadConnections = []threadConnection{
	{"chiefComplaint", "assessment", 20, kindDiagnostic},
	{"historyPresentIllness", "assessment", 10, kindDiagnostic},
	{"examination", "assessment", 10, kindDiagnostic},
	{"assessment", "plan", 20, kindTherapeutic},
	{"plan", "interventions", 20, kindActionIntervention},
	{"interventions", "response", 10, kindActionIntervention},
	{"plan", "followUp", 10, kindTherapeutic},
}

// GoldenThreadReport traces the connection between presenting problem,
// assessment, plan and interventions through the note.
type GoldenThreadReport struct {
	Compliance      string             `json:"golden_thread_compliance"`
	Score           int                `json:"score"`
	SectionsPresent []string           `json:"sections_present"`
	MissingSections []string           `json:"missing_sections"`
	Connections     []ConnectionResult `json:"connections"`
	Feedback        string             `json:"feedback"`
	Recommendations []string           `json:"recommendations"`
}

type ConnectionResult struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
	Found  bool   `json:"found"`
	Strong bool   `json:"strong"`
}

// AnalyzeGoldenThread detects sections, evaluates the directed
// connections between them and scores the weighted share of strong
// connections.
func AnalyzeGoldenThread(text string, policy GoldenThreadPolicy) *GoldenThreadReport {
	if policy.MinScore <= 0 || policy.MinSections <= 0 {
		policy = DefaultGoldenThreadPolicy()
	}

	lowered := strings.ToLower(text)
	sentences := Sentences(lowered)

	// Per-section significant-word pools, built from the sentences the
	// section's keywords appear in.
	present := make(map[string]map[string]struct{})
	report := &GoldenThreadReport{}

	for _, section := range goldenThreadSections {
		pool := sectionWordPool(sentences, section.Keywords)
		if pool != nil {
			present[section.Name] = pool
			report.SectionsPresent = append(report.SectionsPresent, section.Name)
		} else {
			report.MissingSections = append(report.MissingSections, section.Name)
		}
	}

	totalWeight := 0
	strongWeight := 0
	for _, conn := range goldenThreadConnections {
		totalWeight += conn.Weight

		result := ConnectionResult{From: conn.From, To: conn.To, Weight: conn.Weight}
		fromPool, fromOK := present[conn.From]
		toPool, toOK := present[conn.To]
		result.Found = fromOK && toOK
		if result.Found {
			result.Strong = isStrongConnection(fromPool, toPool, lowered, conn.Kind)
		}
		if result.Strong {
			strongWeight += conn.Weight
		}
		report.Connections = append(report.Connections, result)
	}

	if totalWeight > 0 {
		report.Score = clampScore(100 * float64(strongWeight) / float64(totalWeight))
	}

	report.Compliance = complianceLabel(report, policy)
	report.Feedback = goldenThreadFeedback(report)
	report.Recommendations = goldenThreadRecommendations(report)
	return report
}

// sectionWordPool returns the significant words of every sentence in
// which one of the section keywords occurs, or nil when the section is
// absent.
func sectionWordPool(sentences []string, keywords []string) map[string]struct{} {
	var pool map[string]struct{}
	for _, sentence := range sentences {
		matched := false
		for _, kw := range keywords {
			if strings.Contains(sentence, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if pool == nil {
			pool = make(map[string]struct{})
		}
		for w := range significantWords(Words(sentence)) {
			pool[w] = struct{}{}
		}
	}
	return pool
}

// isStrongConnection requires the two sections to share significant
// words and the document to carry at least one keyword of the
// connection's kind.
func isStrongConnection(fromPool, toPool map[string]struct{}, lowered string, kind connectionKind) bool {
	shared := 0
	for w := range fromPool {
		if _, ok := toPool[w]; ok {
			shared++
		}
	}
	if shared == 0 {
		return false
	}

	for _, kw := range typeKeywords[kind] {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func complianceLabel(r *GoldenThreadReport, policy GoldenThreadPolicy) string {
	sections := len(r.SectionsPresent)
	switch {
	case r.Score >= policy.MinScore && sections >= policy.MinSections:
		return "Compliant"
	case sections >= 2:
		return "Partially Compliant"
	default:
		return "Non-Compliant"
	}
}

func goldenThreadFeedback(r *GoldenThreadReport) string {
	switch r.Compliance {
	case "Compliant":
		return "The golden thread is intact: presenting problem, assessment, plan and interventions connect clearly."
	case "Partially Compliant":
		return fmt.Sprintf("Some thread sections are present (%d found) but the connections between them are weak or missing.", len(r.SectionsPresent))
	default:
		return "The golden thread is broken: core note sections could not be identified."
	}
}

func goldenThreadRecommendations(r *GoldenThreadReport) []string {
	var recs []string
	for _, missing := range r.MissingSections {
		recs = append(recs, fmt.Sprintf("Add a clearly labeled %s section.", missing))
		if len(recs) == 3 {
			break
		}
	}
	for _, conn := range r.Connections {
		if conn.Found && !conn.Strong {
			recs = append(recs, fmt.Sprintf("Tie the %s section back to the %s section explicitly.", conn.To, conn.From))
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain explicit linkage from presenting problem through interventions.")
	}
	return recs
}
