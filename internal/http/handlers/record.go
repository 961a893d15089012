package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftbase/appbuilder-backend/internal/http/response"
	"github.com/craftbase/appbuilder-backend/internal/services"
)

// RecordHandler exposes the schema-driven object store. Every write lands in
// the undo log through the mutation interceptor, so the responses include the
// checkpoint the change was recorded under.
type RecordHandler struct {
	svc services.RecordService
}

func NewRecordHandler(svc services.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// POST /api/applications/:appID/tables/:table/rows
func (h *RecordHandler) Create(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	row, cp, err := h.svc.CreateRow(c.Request.Context(), scope, c.Param("table"), fields)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"row": row, "checkpoint": cp})
}

// PATCH /api/applications/:appID/tables/:table/rows/:id
func (h *RecordHandler) Update(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	var changes map[string]interface{}
	if err := c.ShouldBindJSON(&changes); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	row, cp, err := h.svc.UpdateRow(c.Request.Context(), scope, c.Param("table"), c.Param("id"), changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"row": row, "checkpoint": cp})
}

// DELETE /api/applications/:appID/tables/:table/rows/:id
func (h *RecordHandler) Delete(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	cp, err := h.svc.DeleteRow(c.Request.Context(), scope, c.Param("table"), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "checkpoint": cp})
}

// GET /api/applications/:appID/tables/:table/rows/:id
func (h *RecordHandler) Get(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	row, err := h.svc.GetRow(c.Request.Context(), scope, c.Param("table"), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"row": row})
}

// GET /api/applications/:appID/tables/:table/rows
func (h *RecordHandler) List(c *gin.Context) {
	scope, ok := scopeFromRequest(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListRows(c.Request.Context(), scope, c.Param("table"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"rows": rows})
}
