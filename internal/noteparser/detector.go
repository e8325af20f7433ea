package noteparser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// minSectionContent is the minimum trimmed body length for a header match to
// count as a section; anything shorter is treated as a bare header with no body.
const minSectionContent = 5

// overlapDedupeRatio: two detections covering more than this share of the
// shorter span are considered duplicates of the same region.
const overlapDedupeRatio = 0.5

// standardizedBonusStep and standardizedBonusCap control the additive trust
// bonus applied to the aggregate confidence for well-structured notes.
const (
	standardizedBonusStep = 0.02
	standardizedBonusCap  = 0.10
)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// Detector segments free-text clinical notes into typed sections. It holds no
// mutable state and is safe for concurrent use.
type Detector struct {
	table *PatternTable
}

// New builds a Detector from the given pattern table. Pass DefaultPatterns()
// for production behavior.
func New(table *PatternTable) *Detector {
	if table == nil {
		table = DefaultPatterns()
	}
	return &Detector{table: table}
}

// Parse segments noteText into an ordered, non-overlapping section list.
// It never panics outward: internal failures are recorded in
// Metadata.Errors and an empty-but-valid ParsedNote is returned.
func (d *Detector) Parse(noteText string) (result *ParsedNote) {
	start := time.Now()

	result = &ParsedNote{
		OriginalText: noteText,
		Format:       FormatUnknown,
		EMRType:      EMRUnknown,
		ParsedAt:     start,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Sections = nil
			result.Format = FormatUnknown
			result.EMRType = EMRUnknown
			result.Metadata.SectionCount = 0
			result.Metadata.OverallConfidence = 0
			result.Metadata.Errors = append(result.Metadata.Errors, fmt.Sprintf("internal parse failure: %v", r))
			result.Metadata.ElapsedMs = time.Since(start).Milliseconds()
		}
	}()

	norm := normalize(noteText)
	result.NormalizedText = norm

	if norm == "" {
		result.Metadata.ElapsedMs = time.Since(start).Milliseconds()
		return result
	}

	lower := strings.ToLower(norm)

	result.EMRType = d.detectEMRType(norm)
	result.Format = d.detectFormat(lower)

	boundaries := d.scanBoundaries(lower)
	sections, matched := d.extractSections(norm, lower, boundaries)

	sections, warnings := resolveOverlaps(sections)

	if result.Format == FormatUnknown && len(sections) == 0 {
		sections = d.classifyParagraphs(norm, lower)
	}

	result.Sections = sections
	result.Metadata = ParseMetadata{
		SectionCount:      len(sections),
		OverallConfidence: d.aggregateConfidence(sections),
		Warnings:          warnings,
		MatchedPatterns:   matched,
		ElapsedMs:         time.Since(start).Milliseconds(),
	}
	return result
}

// normalize unifies line endings, collapses horizontal whitespace runs and
// trims the text. All section spans refer to the normalized text.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// detectEMRType checks for Epic inline markup. Absence of Epic markers means
// "credible": the unknown branch is intentionally unreachable here, because no
// third EMR exists in the deployments this heuristic was tuned on. EMRUnknown
// survives only as the error-path zero value.
func (d *Detector) detectEMRType(text string) EMRType {
	for _, re := range d.table.EpicMarkers {
		if re.MatchString(text) {
			return EMREpic
		}
	}
	return EMRCredible
}

// detectFormat classifies the overall note structure from keyword presence.
func (d *Detector) detectFormat(lower string) NoteFormat {
	soapHits := 0
	for _, kw := range d.table.SOAPKeywords {
		if indexKeyword(lower, kw) >= 0 {
			soapHits++
		}
	}

	stdHits := 0
	for _, p := range d.table.Sections {
		if !p.Standardized {
			continue
		}
		for _, kw := range p.Keywords {
			if indexKeyword(lower, kw) >= 0 {
				stdHits++
				break
			}
		}
	}

	switch {
	case soapHits >= 3:
		return FormatSOAP
	case stdHits >= 3:
		return FormatNarrative
	case soapHits > 0 && stdHits > 0:
		return FormatMixed
	default:
		return FormatUnknown
	}
}

// scanBoundaries collects every occurrence of every keyword from every pattern
// in one linear pass over the text, sorted ascending. Section-end lookup is
// then a binary search instead of a per-match rescan; boundary selection is
// identical.
func (d *Detector) scanBoundaries(lower string) []int {
	seen := map[int]bool{}
	var out []int
	for _, p := range d.table.Sections {
		for _, kw := range p.Keywords {
			for _, idx := range findAll(lower, kw) {
				if !seen[idx] {
					seen[idx] = true
					out = append(out, idx)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}

// findAll returns the index of every word-anchored occurrence of keyword in s.
// Anchoring matters: "objective:" occurs inside "subjective:" and must not
// count there.
func findAll(s, keyword string) []int {
	var out []int
	off := 0
	for {
		i := indexKeyword(s[off:], keyword)
		if i < 0 {
			return out
		}
		out = append(out, off+i)
		off += i + len(keyword)
	}
}

// indexKeyword returns the first occurrence of keyword in s that starts at a
// word boundary, or -1.
func indexKeyword(s, keyword string) int {
	off := 0
	for {
		i := strings.Index(s[off:], keyword)
		if i < 0 {
			return -1
		}
		at := off + i
		if at == 0 || !isWordByte(s[at-1]) {
			return at
		}
		off = at + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// extractSections finds at most one section per pattern: the first keyword
// variant (in listed order) that occurs in the text defines the section start,
// and the nearest following boundary from any pattern defines its end.
func (d *Detector) extractSections(norm, lower string, boundaries []int) ([]Section, []string) {
	var sections []Section
	var matched []string

	for _, p := range d.table.Sections {
		var kwStart = -1
		var keyword string
		for _, kw := range p.Keywords {
			if i := indexKeyword(lower, kw); i >= 0 {
				kwStart, keyword = i, kw
				break
			}
		}
		if kwStart < 0 {
			continue
		}

		// The header colon, not the keyword start, is the anchor for the
		// next-boundary search: keywords containing other keywords as a
		// suffix ("assessment and plan:" vs "plan:") must not end their own
		// section at themselves.
		colon := kwStart + len(keyword) - 1
		end := nextBoundary(boundaries, colon)
		if end < 0 {
			end = len(norm)
		}

		content := strings.TrimSpace(norm[colon+1 : end])
		if len(content) < minSectionContent {
			continue
		}

		sections = append(sections, Section{
			Type:       p.Type,
			Title:      p.Type.Title(),
			Content:    content,
			Span:       Span{Start: kwStart, End: end},
			Confidence: p.Confidence,
			Metadata: SectionMetadata{
				WordCount:     len(strings.Fields(content)),
				HasEMRSyntax:  d.hasEMRSyntax(content),
				IsEmpty:       content == "",
				ClinicalTerms: d.clinicalTerms(content),
				MatchedHeader: norm[kwStart : kwStart+len(keyword)],
				Standardized:  p.Standardized,
			},
		})
		matched = append(matched, fmt.Sprintf("%s:%s", p.Type, keyword))
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Span.Start < sections[j].Span.Start
	})
	return sections, matched
}

// nextBoundary returns the smallest boundary strictly after pos, or -1.
func nextBoundary(boundaries []int, pos int) int {
	i := sort.SearchInts(boundaries, pos+1)
	if i == len(boundaries) {
		return -1
	}
	return boundaries[i]
}

// resolveOverlaps enforces the no-overlap invariant on a start-sorted section
// list. The losing section of each conflict is discarded entirely: a
// standardized section beats a legacy/heuristic one, then higher confidence
// wins, then the earlier span.
func resolveOverlaps(sections []Section) ([]Section, []string) {
	if len(sections) < 2 {
		return sections, nil
	}

	var warnings []string
	kept := sections[:1]
	for _, cur := range sections[1:] {
		prev := &kept[len(kept)-1]
		if cur.Span.Start >= prev.Span.End {
			kept = append(kept, cur)
			continue
		}

		duplicate := overlapRatio(prev.Span, cur.Span) > overlapDedupeRatio
		winner, loser := pickWinner(*prev, cur)
		kind := "overlap"
		if duplicate {
			kind = "duplicate"
		}
		warnings = append(warnings, fmt.Sprintf(
			"%s between %s [%d,%d) and %s [%d,%d): kept %s",
			kind, prev.Type, prev.Span.Start, prev.Span.End,
			cur.Type, cur.Span.Start, cur.Span.End, winner.Type))
		_ = loser
		kept[len(kept)-1] = winner
	}
	return kept, warnings
}

// overlapRatio is the overlapping share of the shorter of the two spans.
func overlapRatio(a, b Span) float64 {
	lo := a.Start
	if b.Start > lo {
		lo = b.Start
	}
	hi := a.End
	if b.End < hi {
		hi = b.End
	}
	if hi <= lo {
		return 0
	}
	shorter := a.End - a.Start
	if l := b.End - b.Start; l < shorter {
		shorter = l
	}
	if shorter == 0 {
		return 0
	}
	return float64(hi-lo) / float64(shorter)
}

func pickWinner(a, b Section) (winner, loser Section) {
	if a.Metadata.Standardized != b.Metadata.Standardized {
		if a.Metadata.Standardized {
			return a, b
		}
		return b, a
	}
	if a.Confidence != b.Confidence {
		if a.Confidence > b.Confidence {
			return a, b
		}
		return b, a
	}
	return a, b
}

// aggregateConfidence is the mean section confidence plus a capped bonus for
// standardized sections, reflecting higher trust in structured
// transfer-of-care documents. Always within [0, 1].
func (d *Detector) aggregateConfidence(sections []Section) float64 {
	if len(sections) == 0 {
		return 0
	}
	sum := 0.0
	standardized := 0
	for _, s := range sections {
		sum += s.Confidence
		if s.Metadata.Standardized {
			standardized++
		}
	}
	conf := sum / float64(len(sections))
	bonus := standardizedBonusStep * float64(standardized)
	if bonus > standardizedBonusCap {
		bonus = standardizedBonusCap
	}
	conf += bonus
	if conf > 1 {
		conf = 1
	}
	return conf
}

func (d *Detector) hasEMRSyntax(content string) bool {
	for _, re := range d.table.EpicMarkers {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

func (d *Detector) clinicalTerms(content string) []string {
	lower := strings.ToLower(content)
	var terms []string
	for _, t := range d.table.ClinicalTerms {
		if strings.Contains(lower, t) {
			terms = append(terms, t)
		}
	}
	return terms
}
