package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/http/response"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
)

// scopeFromRequest builds the checkpoint scope from the :appID path param and
// the optional object_id query param. Aborts the request on bad input.
func scopeFromRequest(c *gin.Context) (types.Scope, bool) {
	appID, err := uuid.Parse(c.Param("appID"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return types.Scope{}, false
	}
	raw := strings.TrimSpace(c.Query("object_id"))
	if raw == "" {
		return types.AppScope(appID), true
	}
	objectID, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return types.Scope{}, false
	}
	return types.ObjectScope(appID, objectID), true
}
