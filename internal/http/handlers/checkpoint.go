package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/http/response"
	"github.com/craftbase/appbuilder-backend/internal/services"
)

type CheckpointHandler struct {
	history services.HistoryService
	restore services.RestoreService
}

func NewCheckpointHandler(history services.HistoryService, restore services.RestoreService) *CheckpointHandler {
	return &CheckpointHandler{history: history, restore: restore}
}

// GET /api/applications/:appID/checkpoints
func (h *CheckpointHandler) History(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	summaries, err := h.history.History(c.Request.Context(), scope)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkpoints": summaries})
}

// GET /api/applications/:appID/checkout
func (h *CheckpointHandler) Checkout(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	changes, err := h.history.Checkout(c.Request.Context(), scope)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changes": changes})
}

// POST /api/applications/:appID/checkpoints/:checkpointID/restore
func (h *CheckpointHandler) Restore(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	checkpointID, err := uuid.Parse(c.Param("checkpointID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	result, err := h.restore.Restore(c.Request.Context(), scope, checkpointID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"restore": result})
}

// DELETE /api/applications/:appID/checkpoints
//
// Discards the scope's entire change history without touching live data. The
// current state becomes the new baseline and nothing earlier can be restored.
func (h *CheckpointHandler) DeleteAll(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	result, err := h.restore.DeleteAll(c.Request.Context(), scope)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": result})
}
