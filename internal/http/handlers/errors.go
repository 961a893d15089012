package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftbase/appbuilder-backend/internal/http/response"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/services"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses and
// stable error codes. Anything unrecognized is a 500 internal_error.
func respondServiceError(c *gin.Context, err error) {
	var conflict *services.RestoreConflictError
	if errors.As(err, &conflict) {
		response.RespondErrorDetails(c, http.StatusConflict, "restore_conflict", err, gin.H{
			"table":       conflict.Table,
			"primary_key": conflict.PrimaryKey,
			"operation":   string(conflict.Operation),
		})
		return
	}
	var undoWrite *services.UndoLogWriteError
	if errors.As(err, &undoWrite) {
		response.RespondError(c, http.StatusInternalServerError, "undo_log_write_failure", err)
		return
	}

	switch {
	case errors.Is(err, pkgerr.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerr.ErrInvalidArgument):
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerr.ErrSessionConflict):
		response.RespondError(c, http.StatusConflict, "session_conflict", err)
	case errors.Is(err, pkgerr.ErrScopeBusy):
		response.RespondError(c, http.StatusConflict, "scope_busy", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
