package editanalysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Priority classifies how urgently the prompt optimizer should act on a
// session's analysis.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Pattern is one detected behavioral regularity.
type Pattern struct {
	Type                 PatternType       `json:"type"`
	Description          string            `json:"description"`
	SectionName          string            `json:"section,omitempty"`
	Confidence           float64           `json:"confidence"`
	Frequency            int               `json:"frequency"`
	Examples             []string          `json:"examples,omitempty"`
	SuggestedImprovement string            `json:"suggested_improvement"`
	Contexts             []ClinicalContext `json:"contexts,omitempty"`
}

// PromptSuggestions groups advisory suggestion strings by the prompt surface
// they target. The external optimizer decides what to do with them.
type PromptSuggestions struct {
	SystemPrompt  []string `json:"system_prompt,omitempty"`
	UserPrompt    []string `json:"user_prompt,omitempty"`
	ClinicalFocus []string `json:"clinical_focus,omitempty"`
}

// Result is the immutable output of one completed session's analysis.
type Result struct {
	SessionID            string            `json:"session_id"`
	Satisfaction         int               `json:"satisfaction"` // 1-10
	Confidence           float64           `json:"confidence"`
	Patterns             []Pattern         `json:"patterns"`
	Suggestions          PromptSuggestions `json:"suggestions"`
	ImprovementPotential float64           `json:"improvement_potential"`
	Priority             Priority          `json:"priority"`
}

// Analyzer derives satisfaction, behavioral patterns and prompt suggestions
// from a session's delta log. It is a pure function of its inputs and safe
// for concurrent use.
type Analyzer struct {
	rules *Rules
}

// New builds an Analyzer from the given rule table. Pass DefaultRules() for
// production behavior.
func New(rules *Rules) *Analyzer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Analyzer{rules: rules}
}

// Analyze produces a well-formed Result for any input, including a nil or
// empty delta list: absence of data yields a zero-pattern result at the
// neutral baseline with low priority.
func (a *Analyzer) Analyze(session *Session, deltas []Delta) *Result {
	result := &Result{
		Satisfaction: int(a.rules.BaselineSatisfaction),
		Confidence:   0.3,
		Priority:     PriorityLow,
	}
	if session == nil {
		return result
	}
	result.SessionID = session.ID.String()
	if len(deltas) == 0 {
		return result
	}

	result.Satisfaction = a.scoreSatisfaction(session, deltas)
	result.Patterns = a.detectPatterns(session, deltas)
	result.Suggestions = a.synthesizeSuggestions(session, deltas, result.Patterns)
	result.ImprovementPotential = a.improvementPotential(session)
	result.Priority = a.priority(result.Satisfaction, result.ImprovementPotential)
	result.Confidence = a.confidence(len(deltas), len(result.Patterns))
	return result
}

// scoreSatisfaction applies the fixed signed adjustments to the neutral
// baseline and clamps to an integer in [1, 10].
func (a *Analyzer) scoreSatisfaction(session *Session, deltas []Delta) int {
	score := a.rules.BaselineSatisfaction

	switch n := len(deltas); {
	case n > a.rules.HighEditCount:
		score -= 2
	case n > a.rules.ModerateEditCount:
		score -= 1
	case n < a.rules.LowEditCount:
		score += 1
	}

	for _, d := range deltas {
		if del, ok := d.(Delete); ok && len(del.Text) > a.rules.MajorDeletionLength {
			score -= a.rules.MajorDeletionPenalty
		}
	}

	if session.Duration() > a.rules.LongSession {
		score -= a.rules.LongSessionPenalty
	}
	if session.Metrics.BackspaceFrequency > a.rules.BackspaceThreshold {
		score -= a.rules.BackspacePenalty
	}

	rounded := int(math.Round(score))
	if rounded < 1 {
		return 1
	}
	if rounded > 10 {
		return 10
	}
	return rounded
}

// detectPatterns runs the fixed rule battery over the delta log.
func (a *Analyzer) detectPatterns(session *Session, deltas []Delta) []Pattern {
	var patterns []Pattern

	if p := a.detectFrequentDeletion(session, deltas); p != nil {
		patterns = append(patterns, *p)
	}
	patterns = append(patterns, a.detectConsistentAdditions(session, deltas)...)
	if p := a.detectStyleChange(session, deltas); p != nil {
		patterns = append(patterns, *p)
	}
	return patterns
}

func (a *Analyzer) detectFrequentDeletion(session *Session, deltas []Delta) *Pattern {
	count := 0
	var examples []string
	for _, d := range deltas {
		del, ok := d.(Delete)
		if !ok || len(del.Text) <= a.rules.FrequentDeletionLength {
			continue
		}
		count++
		if len(examples) < a.rules.MaxExamples {
			examples = append(examples, snippet(del.Text))
		}
	}
	if count < a.rules.FrequentDeletionMin {
		return nil
	}

	return &Pattern{
		Type:                 PatternFrequentDeletion,
		Description:          fmt.Sprintf("deleted %d substantial spans of generated text", count),
		Confidence:           math.Min(0.9, float64(count)/5),
		Frequency:            count,
		Examples:             examples,
		SuggestedImprovement: a.rules.Improvements[PatternFrequentDeletion],
		Contexts:             []ClinicalContext{session.Context},
	}
}

func (a *Analyzer) detectConsistentAdditions(session *Session, deltas []Delta) []Pattern {
	type group struct {
		count    int
		examples []string
	}
	groups := map[string]*group{}
	for _, d := range deltas {
		ins, ok := d.(Insert)
		if !ok || len(ins.Text) <= a.rules.ConsistentAdditionLen {
			continue
		}
		name := ins.SectionName
		if name == "" {
			name = "unspecified"
		}
		g := groups[name]
		if g == nil {
			g = &group{}
			groups[name] = g
		}
		g.count++
		if len(g.examples) < a.rules.MaxExamples {
			g.examples = append(g.examples, snippet(ins.Text))
		}
	}

	names := make([]string, 0, len(groups))
	for name, g := range groups {
		if g.count > a.rules.ConsistentAdditionMin {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var patterns []Pattern
	for _, name := range names {
		g := groups[name]
		patterns = append(patterns, Pattern{
			Type:                 PatternConsistentAddition,
			Description:          fmt.Sprintf("consistently added content to the %s section (%d times)", name, g.count),
			SectionName:          name,
			Confidence:           math.Min(0.8, float64(g.count)/3),
			Frequency:            g.count,
			Examples:             g.examples,
			SuggestedImprovement: a.rules.Improvements[PatternConsistentAddition],
			Contexts:             []ClinicalContext{session.Context},
		})
	}
	return patterns
}

func (a *Analyzer) detectStyleChange(session *Session, deltas []Delta) *Pattern {
	count := 0
	var examples []string
	for _, d := range deltas {
		rep, ok := d.(Replace)
		if !ok {
			continue
		}
		if a.isFormal(rep.OldText) == a.isFormal(rep.NewText) {
			continue
		}
		count++
		if len(examples) < a.rules.MaxExamples {
			examples = append(examples, snippet(rep.NewText))
		}
	}
	if count <= a.rules.StyleChangeMin {
		return nil
	}

	return &Pattern{
		Type:                 PatternStyleChange,
		Description:          fmt.Sprintf("rewrote %d passages in a different register", count),
		Confidence:           a.rules.StyleChangeConfidence,
		Frequency:            count,
		Examples:             examples,
		SuggestedImprovement: a.rules.Improvements[PatternStyleChange],
		Contexts:             []ClinicalContext{session.Context},
	}
}

func (a *Analyzer) isFormal(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range a.rules.FormalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// improvementPotential is a weighted blend of edit density, major-change
// count and the normalized word-count delta, capped to [0, 1].
func (a *Analyzer) improvementPotential(session *Session) float64 {
	editDensity := math.Min(1, float64(session.TotalEdits)/30)
	majorChanges := math.Min(1, float64(session.MajorEdits)/5)

	origWords := len(strings.Fields(session.OriginalContent))
	finalWords := len(strings.Fields(session.FinalContent))
	wordDelta := 0.0
	if origWords > 0 {
		wordDelta = math.Min(1, math.Abs(float64(finalWords-origWords))/float64(origWords))
	}

	potential := 0.5*editDensity + 0.3*majorChanges + 0.2*wordDelta
	return math.Max(0, math.Min(1, potential))
}

func (a *Analyzer) priority(satisfaction int, potential float64) Priority {
	switch {
	case satisfaction <= 4 || potential > 0.7:
		return PriorityHigh
	case satisfaction <= 6 || potential > 0.4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// confidence grows with evidence volume: both the delta count and the number
// of detected patterns raise trust in the analysis.
func (a *Analyzer) confidence(deltaCount, patternCount int) float64 {
	c := 0.4 + 0.1*float64(patternCount) + math.Min(0.3, float64(deltaCount)/50)
	return math.Min(0.95, c)
}

// snippet bounds an example excerpt to a display-friendly length, cutting on
// a rune boundary so truncation never produces invalid UTF-8.
func snippet(text string) string {
	const max = 80
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
