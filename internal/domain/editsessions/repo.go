package editsessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/rufusmd/ai-medical-note-writer/internal/editanalysis"
)

// SessionRepository persists edit sessions and their append-only delta log.
// GetByID returns the session with its full delta log loaded in order.
type SessionRepository interface {
	Create(ctx context.Context, s *editanalysis.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*editanalysis.Session, error)
	AppendDelta(ctx context.Context, s *editanalysis.Session, d editanalysis.Delta) error
	Complete(ctx context.Context, s *editanalysis.Session) error
	ListByNote(ctx context.Context, noteID uuid.UUID, limit, offset int) ([]*editanalysis.Session, int, error)
}

// AnalysisRepository stores the one analysis result a completed session gets.
type AnalysisRepository interface {
	Save(ctx context.Context, sessionID uuid.UUID, r *editanalysis.Result) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*editanalysis.Result, error)
}
