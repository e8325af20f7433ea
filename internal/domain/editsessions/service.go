package editsessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rufusmd/ai-medical-note-writer/internal/domain/notes"
	"github.com/rufusmd/ai-medical-note-writer/internal/editanalysis"
)

// Service tracks editing sessions over generated notes and runs the edit
// analyzer when a session completes. A session is analyzed exactly once; the
// resulting analysis is immutable.
type Service struct {
	sessions SessionRepository
	analyses AnalysisRepository
	notes    notes.NoteRepository
	analyzer *editanalysis.Analyzer
}

func NewService(sessions SessionRepository, analyses AnalysisRepository, noteRepo notes.NoteRepository, analyzer *editanalysis.Analyzer) *Service {
	return &Service{sessions: sessions, analyses: analyses, notes: noteRepo, analyzer: analyzer}
}

// StartSession opens an edit session over an existing note. The note's current
// content becomes the session's original content, so later deltas are always
// relative to what the clinician actually saw.
func (s *Service) StartSession(ctx context.Context, noteID, userID uuid.UUID, cctx editanalysis.ClinicalContext) (*editanalysis.Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("load note %s: %w", noteID, err)
	}
	sess := editanalysis.NewSession(noteID, note.PatientID, userID, note.Content, cctx)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// AppendDelta records one edit on an open session. Edits against a completed
// session are rejected.
func (s *Service) AppendDelta(ctx context.Context, sessionID uuid.UUID, d editanalysis.Delta) (*editanalysis.Session, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if err := sess.AppendDelta(d); err != nil {
		return nil, err
	}
	if err := s.sessions.AppendDelta(ctx, sess, d); err != nil {
		return nil, fmt.Errorf("append delta: %w", err)
	}
	return sess, nil
}

// CompleteSession finalizes a session and analyzes it. The final content and
// behavior metrics come from the editing surface; the analysis runs exactly
// once and its result is persisted alongside the session. A second completion
// is rejected by the session aggregate.
func (s *Service) CompleteSession(ctx context.Context, sessionID uuid.UUID, finalContent string, metrics editanalysis.BehaviorMetrics) (*editanalysis.Result, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if err := sess.Complete(finalContent, metrics, time.Now()); err != nil {
		return nil, err
	}

	result := s.analyzer.Analyze(sess, sess.Deltas)
	sess.IsAnalyzed = true

	// The analysis is stored before the session is marked complete so a
	// transient save failure leaves the session open and retryable instead of
	// completed with its analysis lost.
	if err := s.analyses.Save(ctx, sess.ID, result); err != nil {
		return nil, fmt.Errorf("save analysis for session %s: %w", sessionID, err)
	}
	if err := s.sessions.Complete(ctx, sess); err != nil {
		return nil, fmt.Errorf("complete session %s: %w", sessionID, err)
	}
	return result, nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*editanalysis.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// GetAnalysis returns the stored analysis for a completed session. It fails
// with the repository's not-found error until the session has completed.
func (s *Service) GetAnalysis(ctx context.Context, sessionID uuid.UUID) (*editanalysis.Result, error) {
	return s.analyses.GetBySession(ctx, sessionID)
}

func (s *Service) ListSessionsByNote(ctx context.Context, noteID uuid.UUID, limit, offset int) ([]*editanalysis.Session, int, error) {
	return s.sessions.ListByNote(ctx, noteID, limit, offset)
}
