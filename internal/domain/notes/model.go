package notes

import (
	"time"

	"github.com/google/uuid"

	"github.com/rufusmd/ai-medical-note-writer/internal/noteparser"
)

// Note maps to the notes table: one clinical note document, either authored
// directly or produced by the external generation service.
type Note struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	NoteType  string    `db:"note_type" json:"note_type"`
	Clinic    *string   `db:"clinic" json:"clinic,omitempty"`
	VisitType *string   `db:"visit_type" json:"visit_type,omitempty"`
	EMR       *string   `db:"emr" json:"emr,omitempty"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParseRecord maps to the parsed_notes table: one persisted Section Detector
// result for a stored note.
type ParseRecord struct {
	ID       uuid.UUID             `db:"id" json:"id"`
	NoteID   uuid.UUID             `db:"note_id" json:"note_id"`
	Result   noteparser.ParsedNote `db:"result" json:"result"`
	ParsedAt time.Time             `db:"parsed_at" json:"parsed_at"`
}
