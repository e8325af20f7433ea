package notes

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rufusmd/ai-medical-note-writer/internal/noteparser"
)

var validNoteTypes = map[string]bool{
	"progress": true, "intake": true, "transfer_of_care": true, "discharge": true,
}

type Service struct {
	notes    NoteRepository
	parses   ParseRepository
	detector *noteparser.Detector
}

func NewService(notes NoteRepository, parses ParseRepository, detector *noteparser.Detector) *Service {
	return &Service{notes: notes, parses: parses, detector: detector}
}

func (s *Service) CreateNote(ctx context.Context, n *Note) error {
	if n.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if n.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if n.Content == "" {
		return fmt.Errorf("content is required")
	}
	if n.NoteType == "" {
		n.NoteType = "progress"
	}
	if !validNoteTypes[n.NoteType] {
		return fmt.Errorf("invalid note_type: %s", n.NoteType)
	}
	return s.notes.Create(ctx, n)
}

func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (*Note, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *Service) UpdateNote(ctx context.Context, n *Note) error {
	if n.NoteType != "" && !validNoteTypes[n.NoteType] {
		return fmt.Errorf("invalid note_type: %s", n.NoteType)
	}
	return s.notes.Update(ctx, n)
}

func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return s.notes.Delete(ctx, id)
}

func (s *Service) ListNotesByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	return s.notes.ListByPatient(ctx, patientID, limit, offset)
}

// ParseNote runs the section detector over a stored note's content and
// persists the result as the note's latest parse.
func (s *Service) ParseNote(ctx context.Context, noteID uuid.UUID) (*ParseRecord, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("load note %s: %w", noteID, err)
	}

	parsed := s.detector.Parse(note.Content)
	record := &ParseRecord{
		NoteID:   noteID,
		Result:   *parsed,
		ParsedAt: parsed.ParsedAt,
	}
	if err := s.parses.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save parse for note %s: %w", noteID, err)
	}
	return record, nil
}

// GetLatestParse returns the most recent persisted parse for a note.
func (s *Service) GetLatestParse(ctx context.Context, noteID uuid.UUID) (*ParseRecord, error) {
	return s.parses.GetLatestByNote(ctx, noteID)
}

// ParseText runs the section detector over raw text without persistence.
func (s *Service) ParseText(text string) *noteparser.ParsedNote {
	return s.detector.Parse(text)
}
