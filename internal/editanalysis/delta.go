package editanalysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// Op discriminates the three atomic edit operations.
type Op string

const (
	OpInsert  Op = "insert"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
)

// Delta is one atomic edit applied to a generated note. Each operation kind is
// its own concrete type carrying only the fields relevant to it.
type Delta interface {
	Op() Op
	// Section is the note section the edit targeted, empty when unknown.
	Section() string
	// Position is the character offset of the edit in the note at edit time.
	Position() int
	// Len is the magnitude of the edit in characters.
	Len() int
	// At is the time the edit was made.
	At() time.Time
}

// Insert adds Text at Position.
type Insert struct {
	SectionName string
	Pos         int
	Text        string
	Timestamp   time.Time
}

func (d Insert) Op() Op          { return OpInsert }
func (d Insert) Section() string { return d.SectionName }
func (d Insert) Position() int   { return d.Pos }
func (d Insert) Len() int        { return len(d.Text) }
func (d Insert) At() time.Time   { return d.Timestamp }

// Delete removes Text starting at Position.
type Delete struct {
	SectionName string
	Pos         int
	Text        string
	Timestamp   time.Time
}

func (d Delete) Op() Op          { return OpDelete }
func (d Delete) Section() string { return d.SectionName }
func (d Delete) Position() int   { return d.Pos }
func (d Delete) Len() int        { return len(d.Text) }
func (d Delete) At() time.Time   { return d.Timestamp }

// Replace substitutes NewText for OldText at Position.
type Replace struct {
	SectionName string
	Pos         int
	OldText     string
	NewText     string
	Timestamp   time.Time
}

func (d Replace) Op() Op          { return OpReplace }
func (d Replace) Section() string { return d.SectionName }
func (d Replace) Position() int   { return d.Pos }

// Len of a replacement is the larger of the removed and inserted spans.
func (d Replace) Len() int {
	if len(d.OldText) > len(d.NewText) {
		return len(d.OldText)
	}
	return len(d.NewText)
}

func (d Replace) At() time.Time { return d.Timestamp }

// deltaRecord is the wire and storage encoding of a Delta, discriminated by op.
type deltaRecord struct {
	Op        Op        `json:"op"`
	Section   string    `json:"section,omitempty"`
	Position  int       `json:"position"`
	OldText   string    `json:"old_text,omitempty"`
	NewText   string    `json:"new_text,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func toRecord(d Delta) deltaRecord {
	rec := deltaRecord{
		Op:        d.Op(),
		Section:   d.Section(),
		Position:  d.Position(),
		Timestamp: d.At(),
	}
	switch v := d.(type) {
	case Insert:
		rec.NewText = v.Text
	case Delete:
		rec.OldText = v.Text
	case Replace:
		rec.OldText = v.OldText
		rec.NewText = v.NewText
	}
	return rec
}

func (r deltaRecord) toDelta() (Delta, error) {
	switch r.Op {
	case OpInsert:
		return Insert{SectionName: r.Section, Pos: r.Position, Text: r.NewText, Timestamp: r.Timestamp}, nil
	case OpDelete:
		return Delete{SectionName: r.Section, Pos: r.Position, Text: r.OldText, Timestamp: r.Timestamp}, nil
	case OpReplace:
		return Replace{SectionName: r.Section, Pos: r.Position, OldText: r.OldText, NewText: r.NewText, Timestamp: r.Timestamp}, nil
	default:
		return nil, fmt.Errorf("unknown delta op %q", r.Op)
	}
}

// MarshalDelta encodes a single delta as its JSON envelope.
func MarshalDelta(d Delta) ([]byte, error) {
	return json.Marshal(toRecord(d))
}

// UnmarshalDelta decodes a single delta envelope produced by MarshalDelta.
func UnmarshalDelta(data []byte) (Delta, error) {
	var r deltaRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode delta: %w", err)
	}
	return r.toDelta()
}

// MarshalDeltas encodes a delta log as a JSON array.
func MarshalDeltas(deltas []Delta) ([]byte, error) {
	records := make([]deltaRecord, 0, len(deltas))
	for _, d := range deltas {
		records = append(records, toRecord(d))
	}
	return json.Marshal(records)
}

// UnmarshalDeltas decodes a JSON array produced by MarshalDeltas.
func UnmarshalDeltas(data []byte) ([]Delta, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []deltaRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode deltas: %w", err)
	}
	deltas := make([]Delta, 0, len(records))
	for i, r := range records {
		d, err := r.toDelta()
		if err != nil {
			return nil, fmt.Errorf("delta %d: %w", i, err)
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}
