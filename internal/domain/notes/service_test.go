package notes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rufusmd/ai-medical-note-writer/internal/noteparser"
)

// -- Mock Repositories --

type mockNoteRepo struct {
	items map[uuid.UUID]*Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{items: make(map[uuid.UUID]*Note)}
}

func (m *mockNoteRepo) Create(_ context.Context, n *Note) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()
	m.items[n.ID] = n
	return nil
}

func (m *mockNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*Note, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return n, nil
}

func (m *mockNoteRepo) Update(_ context.Context, n *Note) error {
	m.items[n.ID] = n
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockNoteRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	var result []*Note
	for _, n := range m.items {
		if n.PatientID == patientID {
			result = append(result, n)
		}
	}
	return result, len(result), nil
}

type mockParseRepo struct {
	items map[uuid.UUID][]*ParseRecord
}

func newMockParseRepo() *mockParseRepo {
	return &mockParseRepo{items: make(map[uuid.UUID][]*ParseRecord)}
}

func (m *mockParseRepo) Save(_ context.Context, r *ParseRecord) error {
	r.ID = uuid.New()
	m.items[r.NoteID] = append(m.items[r.NoteID], r)
	return nil
}

func (m *mockParseRepo) GetLatestByNote(_ context.Context, noteID uuid.UUID) (*ParseRecord, error) {
	records := m.items[noteID]
	if len(records) == 0 {
		return nil, fmt.Errorf("not found")
	}
	return records[len(records)-1], nil
}

func newTestService() *Service {
	return NewService(newMockNoteRepo(), newMockParseRepo(), noteparser.New(noteparser.DefaultPatterns()))
}

// -- Service Tests --

func TestService_CreateNote(t *testing.T) {
	svc := newTestService()
	note := &Note{
		PatientID: uuid.New(),
		UserID:    uuid.New(),
		Content:   "SUBJECTIVE: Patient doing well.",
	}
	if err := svc.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if note.NoteType != "progress" {
		t.Errorf("expected default note_type progress, got %s", note.NoteType)
	}
}

func TestService_CreateNote_Validation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name string
		note *Note
	}{
		{"missing patient", &Note{UserID: uuid.New(), Content: "x"}},
		{"missing user", &Note{PatientID: uuid.New(), Content: "x"}},
		{"missing content", &Note{PatientID: uuid.New(), UserID: uuid.New()}},
		{"bad type", &Note{PatientID: uuid.New(), UserID: uuid.New(), Content: "x", NoteType: "bogus"}},
	}
	for _, tc := range cases {
		if err := svc.CreateNote(context.Background(), tc.note); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestService_ParseNote(t *testing.T) {
	svc := newTestService()
	note := &Note{
		PatientID: uuid.New(),
		UserID:    uuid.New(),
		Content:   "SUBJECTIVE: Patient reports feeling better.\nPLAN: Continue sertraline 50mg.",
	}
	if err := svc.CreateNote(context.Background(), note); err != nil {
		t.Fatal(err)
	}

	record, err := svc.ParseNote(context.Background(), note.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.NoteID != note.ID {
		t.Error("parse record not linked to note")
	}
	if len(record.Result.Sections) != 2 {
		t.Errorf("expected 2 sections, got %d", len(record.Result.Sections))
	}

	latest, err := svc.GetLatestParse(context.Background(), note.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != record.ID {
		t.Error("expected persisted parse to be retrievable")
	}
}

func TestService_ParseNote_MissingNote(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ParseNote(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for missing note")
	}
}

func TestService_ParseText_NeverFails(t *testing.T) {
	svc := newTestService()
	result := svc.ParseText("")
	if result == nil {
		t.Fatal("expected a result for empty text")
	}
	if result.Format != noteparser.FormatUnknown {
		t.Errorf("expected UNKNOWN, got %s", result.Format)
	}
}
