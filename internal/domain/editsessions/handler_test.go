package editsessions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rufusmd/ai-medical-note-writer/internal/editanalysis"
)

func startedSession(t *testing.T, env *testEnv) *editanalysis.Session {
	t.Helper()
	sess, err := env.svc.StartSession(context.Background(), env.note.ID, env.note.UserID, editanalysis.ClinicalContext{})
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestHandler_StartSession(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	body := `{"note_id":"` + env.note.ID.String() + `","user_id":"` + env.note.UserID.String() + `","context":{"emr":"epic"}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.StartSession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var sess editanalysis.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sess.Context.EMR != "epic" {
		t.Errorf("context emr = %q", sess.Context.EMR)
	}
}

func TestHandler_StartSession_MissingNote(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	body := `{"note_id":"` + uuid.New().String() + `","user_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.StartSession(c); err == nil {
		t.Error("expected error for missing note")
	}
}

func TestHandler_AppendDelta(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()
	sess := startedSession(t, env)

	body := `{"op":"insert","section":"plan","position":10,"new_text":"Follow up in two weeks.","timestamp":"2026-08-28T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID.String())

	if err := h.AppendDelta(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var updated editanalysis.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.TotalEdits != 1 {
		t.Errorf("total edits = %d, want 1", updated.TotalEdits)
	}
}

func TestHandler_AppendDelta_UnknownOp(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()
	sess := startedSession(t, env)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"op":"rotate"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID.String())

	if err := h.AppendDelta(c); err == nil {
		t.Error("expected error for unknown delta op")
	}
}

func TestHandler_CompleteAndGetAnalysis(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()
	sess := startedSession(t, env)

	if _, err := env.svc.AppendDelta(context.Background(), sess.ID, editanalysis.Insert{
		SectionName: "plan", Text: "Recheck labs.", Timestamp: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	body := `{"final_content":"edited","metrics":{"avg_typing_speed":180,"backspace_frequency":0.1}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID.String())

	if err := h.CompleteSession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result editanalysis.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.SessionID != sess.ID.String() {
		t.Errorf("session id = %q", result.SessionID)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID.String())

	if err := h.GetAnalysis(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetAnalysis_BeforeCompletion(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()
	sess := startedSession(t, env)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sess.ID.String())

	err := h.GetAnalysis(c)
	if err == nil {
		t.Fatal("expected error before completion")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_ListSessions_RequiresNote(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListSessions(c); err == nil {
		t.Error("expected error without note_id")
	}
}
