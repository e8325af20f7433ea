package editanalysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// majorEditLength is the character threshold above which an edit counts as
// major in the session counters.
const majorEditLength = 50

// ClinicalContext scopes patterns and suggestions to the setting a session
// happened in. The analyzer treats it as an opaque tag except for the EMR
// field, which gates EMR-formatting suggestions.
type ClinicalContext struct {
	Clinic    string `json:"clinic,omitempty"`
	VisitType string `json:"visit_type,omitempty"`
	EMR       string `json:"emr,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

// BehaviorMetrics are coarse typing-behavior measurements collected by the
// editing surface and reported at session end.
type BehaviorMetrics struct {
	TotalPauseMs       int64   `json:"total_pause_ms"`
	AvgTypingSpeed     float64 `json:"avg_typing_speed"` // chars per minute
	BackspaceFrequency float64 `json:"backspace_frequency"`
}

// Session is the aggregate for one editing interaction with one generated
// note. It is created at edit start, mutated only by AppendDelta and Complete,
// and owned by a single writer; it is never mutated after analysis.
type Session struct {
	ID        uuid.UUID       `json:"id"`
	NoteID    uuid.UUID       `json:"note_id"`
	PatientID uuid.UUID       `json:"patient_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Context   ClinicalContext `json:"context"`

	OriginalContent string `json:"original_content"`
	FinalContent    string `json:"final_content,omitempty"`

	Deltas []Delta `json:"-"`

	TotalEdits int `json:"total_edits"`
	MajorEdits int `json:"major_edits"`

	Metrics BehaviorMetrics `json:"metrics"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsAnalyzed  bool       `json:"is_analyzed"`
}

// NewSession starts a session over the given generated content.
func NewSession(noteID, patientID, userID uuid.UUID, original string, ctx ClinicalContext) *Session {
	return &Session{
		ID:              uuid.New(),
		NoteID:          noteID,
		PatientID:       patientID,
		UserID:          userID,
		Context:         ctx,
		OriginalContent: original,
		StartedAt:       time.Now(),
	}
}

// AppendDelta records one edit in the append-only log and maintains the
// derived counters. Completed sessions reject further edits.
func (s *Session) AppendDelta(d Delta) error {
	if s.CompletedAt != nil {
		return fmt.Errorf("session %s is completed", s.ID)
	}
	s.Deltas = append(s.Deltas, d)
	s.TotalEdits++
	if d.Len() > majorEditLength {
		s.MajorEdits++
	}
	return nil
}

// Complete finalizes the session with the edited content and the behavioral
// metrics collected by the editor. Completing twice is an error.
func (s *Session) Complete(finalContent string, metrics BehaviorMetrics, at time.Time) error {
	if s.CompletedAt != nil {
		return fmt.Errorf("session %s is already completed", s.ID)
	}
	s.FinalContent = finalContent
	s.Metrics = metrics
	s.CompletedAt = &at
	return nil
}

// Duration is the elapsed editing time, zero until the session completes.
func (s *Session) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
