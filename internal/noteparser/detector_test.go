package noteparser

import (
	"reflect"
	"strings"
	"testing"
)

const soapNote = "SUBJECTIVE: Patient reports feeling better.\nOBJECTIVE: Alert and oriented.\nASSESSMENT: Improving anxiety.\nPLAN: Continue sertraline 50mg."

func TestParse_SOAPScenario(t *testing.T) {
	d := New(DefaultPatterns())
	result := d.Parse(soapNote)

	if result.Format != FormatSOAP {
		t.Errorf("expected SOAP format, got %s", result.Format)
	}
	if len(result.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(result.Sections))
	}

	wantOrder := []SectionType{SectionSubjective, SectionObjective, SectionAssessment, SectionPlan}
	for i, s := range result.Sections {
		if s.Type != wantOrder[i] {
			t.Errorf("section %d: expected %s, got %s", i, wantOrder[i], s.Type)
		}
		if strings.TrimSpace(s.Content) == "" {
			t.Errorf("section %s: expected nonempty content", s.Type)
		}
		if s.Confidence < 0.9 {
			t.Errorf("section %s: expected confidence >= 0.9, got %f", s.Type, s.Confidence)
		}
	}
	if result.Sections[3].Content != "Continue sertraline 50mg." {
		t.Errorf("unexpected plan content: %q", result.Sections[3].Content)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	d := New(nil)
	result := d.Parse("")

	if result == nil {
		t.Fatal("expected a result for empty input")
	}
	if len(result.Sections) != 0 {
		t.Errorf("expected 0 sections, got %d", len(result.Sections))
	}
	if result.Format != FormatUnknown {
		t.Errorf("expected UNKNOWN format, got %s", result.Format)
	}
	if len(result.Metadata.Errors) != 0 {
		t.Errorf("empty input is not an error, got %v", result.Metadata.Errors)
	}
}

func TestParse_Idempotent(t *testing.T) {
	d := New(DefaultPatterns())
	a := d.Parse(soapNote)
	b := d.Parse(soapNote)

	b.ParsedAt = a.ParsedAt
	b.Metadata.ElapsedMs = a.Metadata.ElapsedMs
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical results for identical input")
	}
}

func TestParse_SpanInvariant(t *testing.T) {
	inputs := []string{
		soapNote,
		"DIAGNOSIS: Major depressive disorder.\nCURRENT MEDICATIONS: Sertraline 50mg daily.\nHPI: Patient presents with low mood for three weeks.\nFOLLOW-UP: Return in two weeks.",
		"ASSESSMENT AND PLAN: Continue current regimen and follow up in one month.",
		"no headers here at all, just some narrative text about the patient reporting symptoms since last week",
	}

	d := New(DefaultPatterns())
	for _, input := range inputs {
		result := d.Parse(input)
		n := len(result.NormalizedText)
		for i, s := range result.Sections {
			if s.Span.Start < 0 || s.Span.Start >= s.Span.End || s.Span.End > n {
				t.Errorf("input %q: section %s has invalid span [%d,%d) over length %d",
					input[:20], s.Type, s.Span.Start, s.Span.End, n)
			}
			if i > 0 && s.Span.Start < result.Sections[i-1].Span.End {
				t.Errorf("input %q: sections %s and %s overlap",
					input[:20], result.Sections[i-1].Type, s.Type)
			}
		}
	}
}

func TestParse_MinimumContentFilter(t *testing.T) {
	d := New(DefaultPatterns())
	result := d.Parse("PROGNOSIS: Ok.\nPLAN: Continue sertraline at the current dose.")

	for _, s := range result.Sections {
		if s.Type == SectionPrognosis {
			t.Errorf("expected bare prognosis header to be discarded, got content %q", s.Content)
		}
	}
}

func TestParse_NarrativeFormat(t *testing.T) {
	note := "DIAGNOSIS: Generalized anxiety disorder.\n" +
		"CURRENT MEDICATIONS: Escitalopram 10mg daily.\n" +
		"RISK ASSESSMENT: Denies suicidal ideation, no safety concerns.\n" +
		"FOLLOW-UP: Return to clinic in four weeks."

	d := New(DefaultPatterns())
	result := d.Parse(note)

	if result.Format != FormatNarrative {
		t.Errorf("expected NARRATIVE format, got %s", result.Format)
	}
	if len(result.Sections) != 4 {
		t.Errorf("expected 4 sections, got %d", len(result.Sections))
	}
	for _, s := range result.Sections {
		if !s.Metadata.Standardized {
			t.Errorf("section %s: expected standardized flag", s.Type)
		}
	}
}

func TestParse_MixedFormat(t *testing.T) {
	note := "SUBJECTIVE: Patient reports improved sleep since last visit.\n" +
		"DIAGNOSIS: Insomnia, improving.\n"

	d := New(DefaultPatterns())
	result := d.Parse(note)

	if result.Format != FormatMixed {
		t.Errorf("expected MIXED format, got %s", result.Format)
	}
}

func TestParse_OverlapResolution_StandardizedWins(t *testing.T) {
	// "medication plan:" embeds the legacy "plan:" keyword at a word
	// boundary, so both patterns fire on the same region.
	note := "MEDICATION PLAN: Increase sertraline to 100mg daily, monitor for side effects over two weeks."

	d := New(DefaultPatterns())
	result := d.Parse(note)

	var found bool
	for _, s := range result.Sections {
		if s.Type == SectionMedicationPlan {
			found = true
		}
		if s.Type == SectionPlan {
			t.Error("legacy plan section should lose overlap resolution to medication_plan")
		}
	}
	if !found {
		t.Error("expected medication_plan section")
	}
	if len(result.Metadata.Warnings) == 0 {
		t.Error("expected an overlap warning")
	}
}

func TestParse_EMRDetection(t *testing.T) {
	d := New(DefaultPatterns())

	epic := d.Parse("SUBJECTIVE: Patient doing well. Use @SMARTPHRASE@ here.\nPLAN: Continue current medications.")
	if epic.EMRType != EMREpic {
		t.Errorf("expected epic, got %s", epic.EMRType)
	}

	credible := d.Parse(soapNote)
	if credible.EMRType != EMRCredible {
		t.Errorf("expected credible, got %s", credible.EMRType)
	}
}

func TestParse_EMRSyntaxInSectionMetadata(t *testing.T) {
	d := New(DefaultPatterns())
	result := d.Parse("PLAN: Continue sertraline. Schedule with {Provider:12345} and document via .psychfollowup template.")

	if len(result.Sections) == 0 {
		t.Fatal("expected a plan section")
	}
	if !result.Sections[0].Metadata.HasEMRSyntax {
		t.Error("expected has_emr_syntax on section containing SmartList and DotPhrase tokens")
	}
}

func TestParse_NormalizesWhitespace(t *testing.T) {
	d := New(DefaultPatterns())
	result := d.Parse("SUBJECTIVE:\tPatient  reports   feeling\tbetter today.\r\nPLAN: Continue sertraline 50mg.")

	if strings.Contains(result.NormalizedText, "\r") {
		t.Error("expected carriage returns to be removed")
	}
	if strings.Contains(result.NormalizedText, "  ") {
		t.Error("expected whitespace runs to be collapsed")
	}
	if len(result.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(result.Sections))
	}
	if result.Sections[0].Content != "Patient reports feeling better today." {
		t.Errorf("unexpected content: %q", result.Sections[0].Content)
	}
}

func TestParse_SyntheticPatternTable(t *testing.T) {
	table := &PatternTable{
		Sections: []SectionPattern{
			{Type: SectionDiagnosis, Keywords: []string{"dx:"}, Confidence: 0.8, Standardized: true},
			{Type: SectionPlan, Keywords: []string{"todo:"}, Confidence: 0.7},
		},
		SOAPKeywords: []string{"todo:"},
	}

	d := New(table)
	result := d.Parse("DX: major depressive disorder\nTODO: start fluoxetine at low dose")

	if len(result.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(result.Sections))
	}
	if result.Sections[0].Type != SectionDiagnosis || result.Sections[1].Type != SectionPlan {
		t.Errorf("unexpected section types: %s, %s", result.Sections[0].Type, result.Sections[1].Type)
	}
	if result.Sections[0].Confidence != 0.8 {
		t.Errorf("expected injected confidence 0.8, got %f", result.Sections[0].Confidence)
	}
}

func TestParse_MatchedHeaderMetadata(t *testing.T) {
	d := New(DefaultPatterns())
	result := d.Parse(soapNote)

	if len(result.Sections) == 0 {
		t.Fatal("expected sections")
	}
	if result.Sections[0].Metadata.MatchedHeader != "SUBJECTIVE:" {
		t.Errorf("expected literal matched header, got %q", result.Sections[0].Metadata.MatchedHeader)
	}
}

func TestParse_AggregateConfidenceBonus(t *testing.T) {
	d := New(DefaultPatterns())

	standardized := d.Parse("DIAGNOSIS: Major depressive disorder, recurrent.\n" +
		"CURRENT MEDICATIONS: Sertraline 50mg daily.\n" +
		"RISK ASSESSMENT: Denies suicidal ideation at this time.")
	if len(standardized.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(standardized.Sections))
	}

	want := standardizedConfidence + 3*standardizedBonusStep
	got := standardized.Metadata.OverallConfidence
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("expected overall confidence %f, got %f", want, got)
	}
}

func TestSectionType_Title(t *testing.T) {
	if SectionHPI.Title() != "History of Present Illness" {
		t.Errorf("unexpected title: %s", SectionHPI.Title())
	}
	if SectionType("bogus").Title() != "Unknown" {
		t.Errorf("unexpected title for unknown type: %s", SectionType("bogus").Title())
	}
}
