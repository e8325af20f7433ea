package editanalysis

import (
	"fmt"
	"regexp"
	"strings"
)

// epicInlineSyntax matches Epic SmartPhrase/DotPhrase/SmartList tokens and
// wildcard placeholders inside edited text.
var epicInlineSyntax = regexp.MustCompile(`@[A-Za-z][A-Za-z0-9]*@|\{[^{}\n]+:\d+\}|(^|\s)\.[a-z][a-z0-9]+|\*\*\*`)

// synthesizeSuggestions maps detected patterns to categorized prompt-change
// suggestions. Suggestions are advisory strings only; this package never
// rewrites prompts itself.
func (a *Analyzer) synthesizeSuggestions(session *Session, deltas []Delta, patterns []Pattern) PromptSuggestions {
	var s PromptSuggestions

	for _, p := range patterns {
		switch p.Type {
		case PatternFrequentDeletion:
			s.SystemPrompt = appendUnique(s.SystemPrompt,
				"Generate more concise content; the provider removes verbose passages.")
		case PatternConsistentAddition:
			section := p.SectionName
			if section == "" {
				section = "note"
			}
			s.UserPrompt = appendUnique(s.UserPrompt,
				fmt.Sprintf("Expand the %s section with more detail by default.", section))
			s.ClinicalFocus = appendUnique(s.ClinicalFocus, section)
		case PatternStyleChange:
			s.SystemPrompt = appendUnique(s.SystemPrompt,
				"Adjust the writing register to match the provider's edits.")
		case PatternTerminologyPreference:
			s.UserPrompt = appendUnique(s.UserPrompt,
				"Use the provider's preferred terminology where it differs from the default.")
		case PatternSectionReorganization:
			s.SystemPrompt = appendUnique(s.SystemPrompt,
				"Order note sections the way the provider rearranges them.")
		}
	}

	if strings.EqualFold(session.Context.EMR, "epic") && touchesEpicSyntax(deltas) {
		s.SystemPrompt = appendUnique(s.SystemPrompt,
			"Preserve Epic SmartPhrase and DotPhrase tokens exactly as written.")
	}

	return s
}

// touchesEpicSyntax reports whether any edit inserted, removed or rewrote
// EMR inline markup.
func touchesEpicSyntax(deltas []Delta) bool {
	for _, d := range deltas {
		switch v := d.(type) {
		case Insert:
			if epicInlineSyntax.MatchString(v.Text) {
				return true
			}
		case Delete:
			if epicInlineSyntax.MatchString(v.Text) {
				return true
			}
		case Replace:
			if epicInlineSyntax.MatchString(v.OldText) || epicInlineSyntax.MatchString(v.NewText) {
				return true
			}
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
