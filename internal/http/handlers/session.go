package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/http/response"
	"github.com/craftbase/appbuilder-backend/internal/services"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
)

// SessionHandler manages grouped checkpoint sessions: begin opens a pending
// checkpoint that absorbs every mutation in the scope until commit or abort.
type SessionHandler struct {
	svc services.CheckpointService
}

func NewSessionHandler(svc services.CheckpointService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// POST /api/applications/:appID/sessions
// body: { "description": "..." }
func (h *SessionHandler) Begin(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	cp, err := h.svc.BeginSession(c.Request.Context(), scope, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": cp})
}

// POST /api/applications/:appID/sessions/:sessionID/commit
func (h *SessionHandler) Commit(c *gin.Context) {
	h.finish(c, h.svc.CommitSession)
}

// POST /api/applications/:appID/sessions/:sessionID/abort
func (h *SessionHandler) Abort(c *gin.Context) {
	h.finish(c, h.svc.AbortSession)
}

func (h *SessionHandler) finish(c *gin.Context, fn func(ctx context.Context, scope types.Scope, id uuid.UUID) (*types.Checkpoint, error)) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	cp, err := fn(c.Request.Context(), scope, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": cp})
}
