package model

// ManualReviewNote is attached whenever an AI response had to be replaced
// with a default object, so instructors know the score was not model-derived.
const ManualReviewNote = "AI response unavailable - manual review required"

// Default scores substituted when an AI call or parse fails. A transport
// failure (no text at all) gets the neutral-high default; malformed text
// that reached us but could not be parsed gets the midpoint default, which
// is more conservative because the model did respond with something.
const (
	DefaultCallFailureScore  = 85.0
	DefaultParseFailureScore = 50.0
)

// CodeAnalysis is the structured result of the code-analysis model call.
type CodeAnalysis struct {
	TechnicalScore        float64  `json:"technical_score"`
	LogicScore            float64  `json:"logic_score,omitempty"`
	CompletenessScore     float64  `json:"completeness_score,omitempty"`
	CodeStrengths         []string `json:"code_strengths"`
	CodeSuggestions       []string `json:"code_suggestions"`
	TechnicalObservations []string `json:"technical_observations"`
}

// DetailedFeedback groups the narrative feedback bullet lists.
type DetailedFeedback struct {
	ReflectionAssessment  []string `json:"reflection_assessment"`
	AnalyticalStrengths   []string `json:"analytical_strengths"`
	BusinessApplication   []string `json:"business_application"`
	LearningDemonstration []string `json:"learning_demonstration"`
	AreasForDevelopment   []string `json:"areas_for_development"`
	Recommendations       []string `json:"recommendations"`
}

// FeedbackReport is the structured result of the narrative feedback call.
type FeedbackReport struct {
	OverallScore               float64          `json:"overall_score"`
	BusinessUnderstanding      string           `json:"business_understanding"`
	CommunicationClarity       string           `json:"communication_clarity"`
	DataInterpretation         string           `json:"data_interpretation"`
	MethodologyAppropriateness string           `json:"methodology_appropriateness"`
	ReflectionQuality          string           `json:"reflection_quality"`
	DetailedFeedback           DetailedFeedback `json:"detailed_feedback"`
	InstructorComments         string           `json:"instructor_comments"`
}

// DefaultCodeAnalysis returns the documented substitute for a failed or
// unusable code-analysis call.
func DefaultCodeAnalysis(score float64, reason string) *CodeAnalysis {
	return &CodeAnalysis{
		TechnicalScore:    score,
		LogicScore:        score,
		CompletenessScore: score,
		CodeStrengths:     []string{ManualReviewNote},
		CodeSuggestions:   []string{ManualReviewNote},
		TechnicalObservations: []string{
			ManualReviewNote,
			reason,
		},
	}
}

// DefaultFeedbackReport returns the documented substitute for a failed or
// unusable narrative feedback call.
func DefaultFeedbackReport(score float64, reason string) *FeedbackReport {
	return &FeedbackReport{
		OverallScore:               score,
		BusinessUnderstanding:      ManualReviewNote,
		CommunicationClarity:       ManualReviewNote,
		DataInterpretation:         ManualReviewNote,
		MethodologyAppropriateness: ManualReviewNote,
		ReflectionQuality:          ManualReviewNote,
		DetailedFeedback: DetailedFeedback{
			ReflectionAssessment:  []string{ManualReviewNote},
			AnalyticalStrengths:   []string{ManualReviewNote},
			BusinessApplication:   []string{ManualReviewNote},
			LearningDemonstration: []string{ManualReviewNote},
			AreasForDevelopment:   []string{ManualReviewNote},
			Recommendations:       []string{reason},
		},
		InstructorComments: ManualReviewNote,
	}
}
