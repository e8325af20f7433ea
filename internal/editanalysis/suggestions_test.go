package editanalysis

import (
	"strings"
	"testing"
	"time"
)

func TestSuggestions_FrequentDeletionTargetsSystemPrompt(t *testing.T) {
	text := strings.Repeat("verbose filler ", 5)
	var deltas []Delta
	for i := 0; i < 5; i++ {
		deltas = append(deltas, Delete{Text: text})
	}
	s := completedSession(deltas, time.Minute, BehaviorMetrics{})

	result := New(nil).Analyze(s, deltas)
	if len(result.Suggestions.SystemPrompt) == 0 {
		t.Error("expected a system-prompt suggestion for frequent deletion")
	}
}

func TestSuggestions_ConsistentAdditionTargetsUserPromptAndFocus(t *testing.T) {
	add := "additional detail about medication response"
	deltas := []Delta{
		Insert{SectionName: "medication_plan", Text: add},
		Insert{SectionName: "medication_plan", Text: add},
		Insert{SectionName: "medication_plan", Text: add},
	}
	s := completedSession(deltas, time.Minute, BehaviorMetrics{})

	result := New(nil).Analyze(s, deltas)
	if len(result.Suggestions.UserPrompt) == 0 {
		t.Fatal("expected a user-prompt suggestion")
	}
	if !strings.Contains(result.Suggestions.UserPrompt[0], "medication_plan") {
		t.Errorf("suggestion should name the section: %q", result.Suggestions.UserPrompt[0])
	}
	if len(result.Suggestions.ClinicalFocus) != 1 || result.Suggestions.ClinicalFocus[0] != "medication_plan" {
		t.Errorf("expected clinical focus on medication_plan, got %v", result.Suggestions.ClinicalFocus)
	}
}

func TestSuggestions_EpicFormattingFidelity(t *testing.T) {
	deltas := []Delta{
		Replace{OldText: "@DIAG@", NewText: "major depressive disorder"},
		Insert{Text: "short"},
	}

	epicSession := newTestSession()
	epicSession.Context.EMR = "epic"
	for _, d := range deltas {
		_ = epicSession.AppendDelta(d)
	}
	_ = epicSession.Complete("final", BehaviorMetrics{}, epicSession.StartedAt.Add(time.Minute))

	result := New(nil).Analyze(epicSession, deltas)
	var found bool
	for _, sug := range result.Suggestions.SystemPrompt {
		if strings.Contains(sug, "SmartPhrase") {
			found = true
		}
	}
	if !found {
		t.Error("expected a formatting-fidelity suggestion under an epic context")
	}
}

func TestSuggestions_EpicCheckSkippedForOtherEMRs(t *testing.T) {
	deltas := []Delta{
		Replace{OldText: "@DIAG@", NewText: "major depressive disorder"},
	}
	s := completedSession(deltas, time.Minute, BehaviorMetrics{}) // credible context

	result := New(nil).Analyze(s, deltas)
	for _, sug := range result.Suggestions.SystemPrompt {
		if strings.Contains(sug, "SmartPhrase") {
			t.Error("formatting suggestion must only fire under an epic context")
		}
	}
}

func TestSuggestions_Deduplicated(t *testing.T) {
	add := "additional clinical narrative detail"
	deltas := []Delta{
		Insert{SectionName: "hpi", Text: add},
		Insert{SectionName: "hpi", Text: add},
		Insert{SectionName: "hpi", Text: add},
		Insert{SectionName: "hpi", Text: add},
		Insert{SectionName: "hpi", Text: add},
	}
	s := completedSession(deltas, time.Minute, BehaviorMetrics{})

	result := New(nil).Analyze(s, deltas)
	seen := map[string]bool{}
	for _, sug := range result.Suggestions.UserPrompt {
		if seen[sug] {
			t.Errorf("duplicate suggestion: %q", sug)
		}
		seen[sug] = true
	}
}
