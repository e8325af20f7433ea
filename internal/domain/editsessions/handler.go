package editsessions

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rufusmd/ai-medical-note-writer/internal/editanalysis"
	"github.com/rufusmd/ai-medical-note-writer/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/edit-sessions", h.StartSession)
	api.GET("/edit-sessions", h.ListSessions)
	api.GET("/edit-sessions/:id", h.GetSession)
	api.POST("/edit-sessions/:id/deltas", h.AppendDelta)
	api.POST("/edit-sessions/:id/complete", h.CompleteSession)
	api.GET("/edit-sessions/:id/analysis", h.GetAnalysis)
}

type startSessionRequest struct {
	NoteID  uuid.UUID                    `json:"note_id"`
	UserID  uuid.UUID                    `json:"user_id"`
	Context editanalysis.ClinicalContext `json:"context"`
}

func (h *Handler) StartSession(c echo.Context) error {
	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.StartSession(c.Request().Context(), req.NoteID, req.UserID, req.Context)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sess, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

// AppendDelta takes one delta envelope as the request body. The op field
// selects the variant, as in the stored delta log.
func (h *Handler) AppendDelta(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	delta, err := editanalysis.UnmarshalDelta(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.AppendDelta(c.Request().Context(), id, delta)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, sess)
}

type completeSessionRequest struct {
	FinalContent string                       `json:"final_content"`
	Metrics      editanalysis.BehaviorMetrics `json:"metrics"`
}

func (h *Handler) CompleteSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.CompleteSession(c.Request().Context(), id, req.FinalContent, req.Metrics)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	result, err := h.svc.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no analysis for session")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListSessions(c echo.Context) error {
	pg := pagination.FromContext(c)
	noteID, err := uuid.Parse(c.QueryParam("note_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "note_id is required")
	}
	items, total, err := h.svc.ListSessionsByNote(c.Request().Context(), noteID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
