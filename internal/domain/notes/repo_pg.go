package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type noteRepoPG struct{ pool *pgxpool.Pool }

func NewNoteRepoPG(pool *pgxpool.Pool) NoteRepository { return &noteRepoPG{pool: pool} }

const noteCols = `id, patient_id, user_id, title, content, note_type,
	clinic, visit_type, emr, specialty, created_at, updated_at`

func (r *noteRepoPG) scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.PatientID, &n.UserID, &n.Title, &n.Content, &n.NoteType,
		&n.Clinic, &n.VisitType, &n.EMR, &n.Specialty, &n.CreatedAt, &n.UpdatedAt)
	return &n, err
}

func (r *noteRepoPG) Create(ctx context.Context, n *Note) error {
	n.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notes (id, patient_id, user_id, title, content, note_type,
			clinic, visit_type, emr, specialty)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		n.ID, n.PatientID, n.UserID, n.Title, n.Content, n.NoteType,
		n.Clinic, n.VisitType, n.EMR, n.Specialty)
	return err
}

func (r *noteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	return r.scanNote(r.pool.QueryRow(ctx, `SELECT `+noteCols+` FROM notes WHERE id = $1`, id))
}

func (r *noteRepoPG) Update(ctx context.Context, n *Note) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notes SET title=$2, content=$3, note_type=$4,
			clinic=$5, visit_type=$6, emr=$7, specialty=$8, updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.Title, n.Content, n.NoteType, n.Clinic, n.VisitType, n.EMR, n.Specialty)
	return err
}

func (r *noteRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	return err
}

func (r *noteRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notes WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+noteCols+` FROM notes
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n, err := r.scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

type parseRepoPG struct{ pool *pgxpool.Pool }

func NewParseRepoPG(pool *pgxpool.Pool) ParseRepository { return &parseRepoPG{pool: pool} }

func (r *parseRepoPG) Save(ctx context.Context, rec *ParseRecord) error {
	rec.ID = uuid.New()
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode parse result: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO parsed_notes (id, note_id, result, parsed_at)
		VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.NoteID, result, rec.ParsedAt)
	return err
}

func (r *parseRepoPG) GetLatestByNote(ctx context.Context, noteID uuid.UUID) (*ParseRecord, error) {
	var rec ParseRecord
	var result []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, note_id, result, parsed_at FROM parsed_notes
		WHERE note_id = $1
		ORDER BY parsed_at DESC
		LIMIT 1`, noteID).Scan(&rec.ID, &rec.NoteID, &result, &rec.ParsedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &rec.Result); err != nil {
		return nil, fmt.Errorf("decode parse result: %w", err)
	}
	return &rec, nil
}
