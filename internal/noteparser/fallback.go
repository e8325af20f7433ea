package noteparser

import "strings"

// minParagraphLength is the shortest paragraph the heuristic classifier will
// consider; anything shorter carries too little signal.
const minParagraphLength = 20

// minFamilyHits is the keyword-family co-occurrence threshold for classifying
// a paragraph.
const minFamilyHits = 2

// classifyParagraphs is the last-resort segmentation for notes with no
// recognizable headers: split on blank lines and classify each paragraph by
// counting co-occurring clinical keyword families. Matches are low-confidence
// by construction.
func (d *Detector) classifyParagraphs(norm, lower string) []Section {
	var sections []Section

	cursor := 0
	for _, para := range strings.Split(norm, "\n\n") {
		start := cursor
		cursor += len(para) + len("\n\n")

		trimmed := strings.TrimSpace(para)
		if len(trimmed) < minParagraphLength {
			continue
		}

		st := d.classifyParagraph(lower[start : start+len(para)])
		if st == SectionUnknown {
			continue
		}

		sections = append(sections, Section{
			Type:       st,
			Title:      st.Title(),
			Content:    trimmed,
			Span:       Span{Start: start, End: start + len(para)},
			Confidence: fallbackConfidence,
			Metadata: SectionMetadata{
				WordCount:     len(strings.Fields(trimmed)),
				HasEMRSyntax:  d.hasEMRSyntax(trimmed),
				IsEmpty:       trimmed == "",
				ClinicalTerms: d.clinicalTerms(trimmed),
			},
		})
	}
	return sections
}

// classifyParagraph picks the keyword family with the most hits, requiring at
// least minFamilyHits. Ties break toward the family owning the earliest hit,
// then toward the smaller section-type name, so classification stays
// deterministic across map iteration orders.
func (d *Detector) classifyParagraph(lowerPara string) SectionType {
	best := SectionUnknown
	bestHits := 0
	bestFirst := len(lowerPara) + 1

	for st, family := range d.table.KeywordFamilies {
		hits := 0
		first := len(lowerPara) + 1
		for _, kw := range family {
			if i := strings.Index(lowerPara, kw); i >= 0 {
				hits++
				if i < first {
					first = i
				}
			}
		}
		if hits < minFamilyHits {
			continue
		}
		switch {
		case hits > bestHits,
			hits == bestHits && first < bestFirst,
			hits == bestHits && first == bestFirst && st < best:
			best, bestHits, bestFirst = st, hits, first
		}
	}
	return best
}
