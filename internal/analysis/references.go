package analysis

// referenceDocuments is the fixed corpus clonability compares against.
// These are generic clinical note templates whose phrasing gets copied
// wholesale into real documentation far too often.
var referenceDocuments = []struct {
	Name string
	Text string
}{
	{
		Name: "progress-note-template",
		Text: `Client arrived on time for the scheduled session. Client reports continued symptoms of anxiety and depression. Client states that sleep has been poor this week. Mental status examination shows client alert and oriented, affect congruent with stated mood. Assessment: client continues to meet criteria for generalized anxiety disorder. Client is making steady progress toward treatment goals. Plan: continue weekly individual therapy sessions focusing on cognitive behavioral interventions. Will monitor symptoms and reassess treatment plan at next session. Client agreed to practice relaxation techniques between sessions. Follow-up appointment scheduled for next week.`,
	},
	{
		Name: "intake-assessment-template",
		Text: `Client presents with chief complaint of depressed mood and loss of interest in activities. History of present illness: symptoms began approximately six months ago following a significant life stressor. Client denies suicidal ideation or homicidal ideation at this time. Risk assessment completed, client assessed as low risk. Mental status examination: client is alert, oriented to person place and time, speech normal in rate and tone, thought process linear and goal directed. Assessment: presentation is consistent with major depressive disorder, single episode, moderate. Plan: recommend weekly individual psychotherapy, provided informed consent for treatment, discussed confidentiality and its limits.`,
	},
	{
		Name: "discharge-summary-template",
		Text: `Client was admitted for treatment of severe depressive symptoms with passive suicidal ideation. During the course of treatment client participated in individual therapy and group therapy sessions. Client responded well to the treatment provided and demonstrated improved coping skills. Medication was administered as prescribed with no reported side effects. At discharge client denies suicidal ideation and reports improved mood and sleep. Safety plan was reviewed and client verbalized understanding. Discharge plan includes outpatient follow-up within seven days, continuation of current medication regimen, and crisis line contact information provided to client and family.`,
	},
}
