package editanalysis

import "time"

// PatternType names a detected behavioral regularity.
type PatternType string

const (
	PatternFrequentDeletion       PatternType = "frequent_deletion"
	PatternConsistentAddition     PatternType = "consistent_addition"
	PatternStyleChange            PatternType = "style_change"
	PatternTerminologyPreference  PatternType = "terminology_preference"
	PatternSectionReorganization  PatternType = "section_reorganization"
)

// Rules is the immutable constant table driving an Analyzer. The values are
// hand-picked and auditable, not statistically derived; changing any of them
// changes analysis behavior.
type Rules struct {
	// Satisfaction scoring.
	BaselineSatisfaction float64
	HighEditCount        int // above this: -2
	ModerateEditCount    int // above this: -1
	LowEditCount         int // below this: +1
	MajorDeletionLength  int
	MajorDeletionPenalty float64
	LongSession          time.Duration
	LongSessionPenalty   float64
	BackspaceThreshold   float64
	BackspacePenalty     float64

	// Pattern battery thresholds.
	FrequentDeletionMin    int // at least this many qualifying deletions
	FrequentDeletionLength int
	ConsistentAdditionMin  int // strictly more than this many per section
	ConsistentAdditionLen  int
	StyleChangeMin         int // strictly more than this many formality flips
	StyleChangeConfidence  float64

	// FormalMarkers are phrases whose presence marks text as formal register.
	FormalMarkers []string

	// Improvements maps each pattern type to its suggested generation change.
	Improvements map[PatternType]string

	// MaxExamples bounds the edit snippets attached to a pattern.
	MaxExamples int
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *Rules {
	return &Rules{
		BaselineSatisfaction: 7,
		HighEditCount:        20,
		ModerateEditCount:    10,
		LowEditCount:         3,
		MajorDeletionLength:  50,
		MajorDeletionPenalty: 0.5,
		LongSession:          5 * time.Minute,
		LongSessionPenalty:   1,
		BackspaceThreshold:   0.3,
		BackspacePenalty:     1,

		FrequentDeletionMin:    4,
		FrequentDeletionLength: 20,
		ConsistentAdditionMin:  2,
		ConsistentAdditionLen:  10,
		StyleChangeMin:         2,
		StyleChangeConfidence:  0.7,

		FormalMarkers: []string{
			"the patient", "it is noted", "upon examination", "presents with",
			"denies", "reports that", "was advised", "will be monitored",
		},

		Improvements: map[PatternType]string{
			PatternFrequentDeletion:      "generate more concise content",
			PatternConsistentAddition:    "include more detail in the targeted section by default",
			PatternStyleChange:           "match the provider's preferred register",
			PatternTerminologyPreference: "prefer the provider's terminology choices",
			PatternSectionReorganization: "emit sections in the provider's preferred order",
		},

		MaxExamples: 3,
	}
}
