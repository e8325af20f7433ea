package noteparser

import "time"

// SectionType identifies the clinical meaning of a detected note section.
type SectionType string

const (
	SectionDemographics       SectionType = "demographics"
	SectionDiagnosis          SectionType = "diagnosis"
	SectionCurrentMedications SectionType = "current_medications"
	SectionPriorMedications   SectionType = "prior_medications"
	SectionMedicationPlan     SectionType = "medication_plan"
	SectionHPI                SectionType = "hpi"
	SectionReviewOfSystems    SectionType = "review_of_systems"
	SectionPsychiatricExam    SectionType = "psychiatric_exam"
	SectionQuestionnaires     SectionType = "questionnaires"
	SectionMedicalHistory     SectionType = "medical_history"
	SectionPhysicalExam       SectionType = "physical_exam"
	SectionRiskAssessment     SectionType = "risk_assessment"
	SectionAssessmentAndPlan  SectionType = "assessment_and_plan"
	SectionPsychosocial       SectionType = "psychosocial"
	SectionSafetyPlan         SectionType = "safety_plan"
	SectionPrognosis          SectionType = "prognosis"
	SectionFollowUp           SectionType = "follow_up"

	// Legacy SOAP section kinds.
	SectionSubjective SectionType = "subjective"
	SectionObjective  SectionType = "objective"
	SectionAssessment SectionType = "assessment"
	SectionPlan       SectionType = "plan"

	SectionUnknown SectionType = "unknown"
)

var sectionTitles = map[SectionType]string{
	SectionDemographics:       "Demographics",
	SectionDiagnosis:          "Diagnosis",
	SectionCurrentMedications: "Current Medications",
	SectionPriorMedications:   "Prior Medications",
	SectionMedicationPlan:     "Medication Plan",
	SectionHPI:                "History of Present Illness",
	SectionReviewOfSystems:    "Review of Systems",
	SectionPsychiatricExam:    "Psychiatric Exam",
	SectionQuestionnaires:     "Questionnaires",
	SectionMedicalHistory:     "Medical History",
	SectionPhysicalExam:       "Physical Exam",
	SectionRiskAssessment:     "Risk Assessment",
	SectionAssessmentAndPlan:  "Assessment and Plan",
	SectionPsychosocial:       "Psychosocial",
	SectionSafetyPlan:         "Safety Plan",
	SectionPrognosis:          "Prognosis",
	SectionFollowUp:           "Follow-Up",
	SectionSubjective:         "Subjective",
	SectionObjective:          "Objective",
	SectionAssessment:         "Assessment",
	SectionPlan:               "Plan",
	SectionUnknown:            "Unknown",
}

// Title returns the human-readable display label for the section type.
func (t SectionType) Title() string {
	if title, ok := sectionTitles[t]; ok {
		return title
	}
	return sectionTitles[SectionUnknown]
}

// NoteFormat is the overall structural format detected for a note.
type NoteFormat string

const (
	FormatSOAP      NoteFormat = "SOAP"
	FormatNarrative NoteFormat = "NARRATIVE"
	FormatMixed     NoteFormat = "MIXED"
	FormatUnknown   NoteFormat = "UNKNOWN"
)

// EMRType is a best-effort guess at the EMR system the note came from.
type EMRType string

const (
	// EMRUnknown is only produced on parse-failure paths; detection itself
	// never returns it (see Detector.detectEMRType).
	EMRUnknown  EMRType = "unknown"
	EMREpic     EMRType = "epic"
	EMRCredible EMRType = "credible"
)

// Span is a half-open character range [Start, End) into the normalized text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SectionMetadata carries per-section diagnostics alongside the extracted text.
type SectionMetadata struct {
	WordCount     int      `json:"word_count"`
	HasEMRSyntax  bool     `json:"has_emr_syntax"`
	IsEmpty       bool     `json:"is_empty"`
	ClinicalTerms []string `json:"clinical_terms,omitempty"`
	MatchedHeader string   `json:"matched_header,omitempty"`
	Standardized  bool     `json:"standardized"`
}

// Section is one contiguous, typed span of a parsed note.
type Section struct {
	Type       SectionType     `json:"type"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Span       Span            `json:"span"`
	Confidence float64         `json:"confidence"`
	Metadata   SectionMetadata `json:"metadata"`
}

// ParseMetadata summarizes one parse invocation.
type ParseMetadata struct {
	SectionCount      int      `json:"section_count"`
	OverallConfidence float64  `json:"overall_confidence"`
	ElapsedMs         int64    `json:"elapsed_ms"`
	Warnings          []string `json:"warnings,omitempty"`
	Errors            []string `json:"errors,omitempty"`
	MatchedPatterns   []string `json:"matched_patterns,omitempty"`
}

// ParsedNote is the immutable result of one Detector.Parse call.
type ParsedNote struct {
	OriginalText   string        `json:"original_text"`
	NormalizedText string        `json:"normalized_text"`
	Format         NoteFormat    `json:"format"`
	EMRType        EMRType       `json:"emr_type"`
	Sections       []Section     `json:"sections"`
	Metadata       ParseMetadata `json:"metadata"`
	ParsedAt       time.Time     `json:"parsed_at"`
}
