package editsessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rufusmd/ai-medical-note-writer/internal/editanalysis"
)

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository { return &sessionRepoPG{pool: pool} }

const sessionCols = `id, note_id, patient_id, user_id, context, original_content,
	final_content, total_edits, major_edits, metrics, started_at, completed_at, is_analyzed`

func (r *sessionRepoPG) scanSession(row pgx.Row) (*editanalysis.Session, error) {
	var (
		s            editanalysis.Session
		contextJSON  []byte
		metricsJSON  []byte
		finalContent *string
	)
	err := row.Scan(&s.ID, &s.NoteID, &s.PatientID, &s.UserID, &contextJSON, &s.OriginalContent,
		&finalContent, &s.TotalEdits, &s.MajorEdits, &metricsJSON, &s.StartedAt, &s.CompletedAt, &s.IsAnalyzed)
	if err != nil {
		return nil, err
	}
	if finalContent != nil {
		s.FinalContent = *finalContent
	}
	if err := json.Unmarshal(contextJSON, &s.Context); err != nil {
		return nil, fmt.Errorf("decode session context: %w", err)
	}
	if err := json.Unmarshal(metricsJSON, &s.Metrics); err != nil {
		return nil, fmt.Errorf("decode session metrics: %w", err)
	}
	return &s, nil
}

func (r *sessionRepoPG) Create(ctx context.Context, s *editanalysis.Session) error {
	contextJSON, err := json.Marshal(s.Context)
	if err != nil {
		return fmt.Errorf("encode session context: %w", err)
	}
	metricsJSON, err := json.Marshal(s.Metrics)
	if err != nil {
		return fmt.Errorf("encode session metrics: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO edit_sessions (id, note_id, patient_id, user_id, context,
			original_content, metrics, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.NoteID, s.PatientID, s.UserID, contextJSON,
		s.OriginalContent, metricsJSON, s.StartedAt)
	return err
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*editanalysis.Session, error) {
	s, err := r.scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM edit_sessions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	deltas, err := r.loadDeltas(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Deltas = deltas
	return s, nil
}

func (r *sessionRepoPG) loadDeltas(ctx context.Context, sessionID uuid.UUID) ([]editanalysis.Delta, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT payload FROM edit_deltas WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deltas []editanalysis.Delta
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		d, err := editanalysis.UnmarshalDelta(payload)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		deltas = append(deltas, d)
	}
	return deltas, rows.Err()
}

// AppendDelta writes the delta row and the counters the aggregate already
// updated, in one transaction. The delta log is insert-only.
func (r *sessionRepoPG) AppendDelta(ctx context.Context, s *editanalysis.Session, d editanalysis.Delta) error {
	payload, err := editanalysis.MarshalDelta(d)
	if err != nil {
		return fmt.Errorf("encode delta: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO edit_deltas (session_id, payload) VALUES ($1, $2)`,
		s.ID, payload); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE edit_sessions SET total_edits = $2, major_edits = $3 WHERE id = $1`,
		s.ID, s.TotalEdits, s.MajorEdits); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *sessionRepoPG) Complete(ctx context.Context, s *editanalysis.Session) error {
	metricsJSON, err := json.Marshal(s.Metrics)
	if err != nil {
		return fmt.Errorf("encode session metrics: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE edit_sessions
		SET final_content = $2, metrics = $3, completed_at = $4, is_analyzed = $5
		WHERE id = $1 AND completed_at IS NULL`,
		s.ID, s.FinalContent, metricsJSON, s.CompletedAt, s.IsAnalyzed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s is already completed", s.ID)
	}
	return nil
}

func (r *sessionRepoPG) ListByNote(ctx context.Context, noteID uuid.UUID, limit, offset int) ([]*editanalysis.Session, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM edit_sessions WHERE note_id = $1`, noteID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionCols+` FROM edit_sessions
		WHERE note_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`, noteID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []*editanalysis.Session
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

type analysisRepoPG struct{ pool *pgxpool.Pool }

func NewAnalysisRepoPG(pool *pgxpool.Pool) AnalysisRepository { return &analysisRepoPG{pool: pool} }

func (r *analysisRepoPG) Save(ctx context.Context, sessionID uuid.UUID, result *editanalysis.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	// Upsert so a completion retry after a transient failure can re-save
	// without tripping the one-analysis-per-session primary key.
	_, err = r.pool.Exec(ctx, `
		INSERT INTO edit_analyses (session_id, result) VALUES ($1, $2)
		ON CONFLICT (session_id) DO UPDATE SET result = EXCLUDED.result, analyzed_at = NOW()`,
		sessionID, resultJSON)
	return err
}

func (r *analysisRepoPG) GetBySession(ctx context.Context, sessionID uuid.UUID) (*editanalysis.Result, error) {
	var resultJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result FROM edit_analyses WHERE session_id = $1`, sessionID).Scan(&resultJSON)
	if err != nil {
		return nil, err
	}
	var result editanalysis.Result
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("decode analysis for session %s: %w", sessionID, err)
	}
	return &result, nil
}
