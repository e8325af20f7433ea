package noteparser

import "regexp"

// SectionPattern maps one section type to the header keyword variants that
// introduce it. Keywords are matched case-insensitively against the normalized
// text; the listed order is the preference order when several variants appear.
type SectionPattern struct {
	Type         SectionType
	Keywords     []string
	Confidence   float64
	Standardized bool
}

// PatternTable is the immutable configuration driving a Detector. Build one
// with DefaultPatterns, or hand-assemble a synthetic table in tests.
type PatternTable struct {
	Sections []SectionPattern

	// SOAPKeywords is the fixed 4-item set used for format detection.
	SOAPKeywords []string

	// EpicMarkers match EMR-specific inline syntax (SmartPhrases, DotPhrases,
	// SmartLists, wildcard placeholders).
	EpicMarkers []*regexp.Regexp

	// KeywordFamilies drive the heuristic paragraph fallback: a paragraph with
	// at least two hits from one family is classified as that section type.
	KeywordFamilies map[SectionType][]string

	// ClinicalTerms are recognized in section bodies and surfaced in metadata.
	ClinicalTerms []string
}

// Confidence constants are hand-picked and behavioral: changing them changes
// which section wins overlap resolution and the aggregate note confidence.
const (
	soapConfidence         = 0.95
	standardizedConfidence = 0.90
	secondaryConfidence    = 0.85
	weakKeywordConfidence  = 0.80
	fallbackConfidence     = 0.40
)

// DefaultPatterns returns the built-in pattern table.
func DefaultPatterns() *PatternTable {
	return &PatternTable{
		Sections: []SectionPattern{
			{Type: SectionDemographics, Keywords: []string{"demographics:", "patient information:", "identifying information:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionDiagnosis, Keywords: []string{"diagnosis:", "diagnoses:", "dsm-5 diagnosis:", "impression:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionCurrentMedications, Keywords: []string{"current medications:", "medications:", "meds:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionPriorMedications, Keywords: []string{"prior medications:", "medication history:", "past medications:"}, Confidence: secondaryConfidence, Standardized: true},
			{Type: SectionMedicationPlan, Keywords: []string{"medication plan:", "medication changes:", "rx plan:"}, Confidence: secondaryConfidence, Standardized: true},
			{Type: SectionHPI, Keywords: []string{"history of present illness:", "hpi:", "reason for visit:", "present illness:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionReviewOfSystems, Keywords: []string{"review of systems:", "ros:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionPsychiatricExam, Keywords: []string{"mental status exam:", "mental status examination:", "mse:", "psychiatric exam:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionQuestionnaires, Keywords: []string{"questionnaires:", "rating scales:", "phq-9:", "gad-7:"}, Confidence: secondaryConfidence, Standardized: true},
			{Type: SectionMedicalHistory, Keywords: []string{"past medical history:", "medical history:", "pmh:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionPhysicalExam, Keywords: []string{"physical exam:", "physical examination:", "pe:"}, Confidence: secondaryConfidence, Standardized: true},
			{Type: SectionRiskAssessment, Keywords: []string{"risk assessment:", "safety assessment:", "suicide risk assessment:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionAssessmentAndPlan, Keywords: []string{"assessment and plan:", "assessment & plan:", "a/p:", "a&p:"}, Confidence: standardizedConfidence, Standardized: true},
			{Type: SectionPsychosocial, Keywords: []string{"psychosocial:", "social history:", "social factors:"}, Confidence: secondaryConfidence, Standardized: true},
			{Type: SectionSafetyPlan, Keywords: []string{"safety plan:", "crisis plan:"}, Confidence: secondaryConfidence, Standardized: true},
			{Type: SectionPrognosis, Keywords: []string{"prognosis:"}, Confidence: weakKeywordConfidence, Standardized: true},
			{Type: SectionFollowUp, Keywords: []string{"follow-up:", "follow up:", "return to clinic:", "rtc:"}, Confidence: weakKeywordConfidence, Standardized: true},

			// Legacy SOAP headers. Not part of the standardized set, so they
			// lose overlap resolution to standardized matches despite the
			// higher per-section confidence.
			{Type: SectionSubjective, Keywords: []string{"subjective:"}, Confidence: soapConfidence},
			{Type: SectionObjective, Keywords: []string{"objective:"}, Confidence: soapConfidence},
			{Type: SectionAssessment, Keywords: []string{"assessment:"}, Confidence: soapConfidence},
			{Type: SectionPlan, Keywords: []string{"plan:"}, Confidence: soapConfidence},
		},
		SOAPKeywords: []string{"subjective:", "objective:", "assessment:", "plan:"},
		EpicMarkers: []*regexp.Regexp{
			regexp.MustCompile(`@[A-Za-z][A-Za-z0-9]*@`),   // SmartPhrase token
			regexp.MustCompile(`\{[^{}\n]+:\d+\}`),         // SmartList selection
			regexp.MustCompile(`(?m)(^|\s)\.[a-z][a-z0-9]+`), // DotPhrase
			regexp.MustCompile(`\*\*\*`),                   // wildcard placeholder
		},
		KeywordFamilies: map[SectionType][]string{
			SectionCurrentMedications: {"medication", "dose", "mg", "tablet", "daily", "prescribed", "refill"},
			SectionDiagnosis:          {"diagnosis", "disorder", "criteria", "dsm", "icd", "meets"},
			SectionRiskAssessment:     {"suicidal", "ideation", "self-harm", "risk", "denies", "safety"},
			SectionHPI:                {"reports", "states", "presents", "symptoms", "since", "describes"},
			SectionPsychiatricExam:    {"affect", "mood", "oriented", "insight", "judgment", "thought"},
			SectionPlan:               {"continue", "increase", "start", "follow", "schedule", "recommend"},
		},
		ClinicalTerms: []string{
			"anxiety", "depression", "insomnia", "adhd", "ptsd", "bipolar",
			"sertraline", "fluoxetine", "escitalopram", "bupropion", "lithium",
			"therapy", "psychotherapy", "cbt", "hospitalization", "titrate",
		},
	}
}

// patternFor returns the pattern entry for a type, or nil.
func (t *PatternTable) patternFor(st SectionType) *SectionPattern {
	for i := range t.Sections {
		if t.Sections[i].Type == st {
			return &t.Sections[i]
		}
	}
	return nil
}
