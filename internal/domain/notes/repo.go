package notes

import (
	"context"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Note, int, error)
}

type ParseRepository interface {
	Save(ctx context.Context, r *ParseRecord) error
	GetLatestByNote(ctx context.Context, noteID uuid.UUID) (*ParseRecord, error)
}
