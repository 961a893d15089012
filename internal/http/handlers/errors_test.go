package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/craftbase/appbuilder-backend/internal/http/response"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/services"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
)

func TestRespondServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("row: %w", pkgerr.ErrNotFound), http.StatusNotFound, "not_found"},
		{"invalid argument", fmt.Errorf("bad: %w", pkgerr.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"session conflict", fmt.Errorf("scope: %w", pkgerr.ErrSessionConflict), http.StatusConflict, "session_conflict"},
		{"scope busy", fmt.Errorf("scope: %w", pkgerr.ErrScopeBusy), http.StatusConflict, "scope_busy"},
		{
			"restore conflict",
			&services.RestoreConflictError{Table: "workflows", PrimaryKey: "pk-1", Operation: types.OperationCreate},
			http.StatusConflict, "restore_conflict",
		},
		{
			"undo log write failure",
			&services.UndoLogWriteError{Table: "workflows", PrimaryKey: "pk-1", Operation: types.OperationUpdate},
			http.StatusInternalServerError, "undo_log_write_failure",
		},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondServiceError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var envelope response.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestRestoreConflictDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondServiceError(c, &services.RestoreConflictError{
		Table:      "workflow_steps",
		PrimaryKey: "abc",
		Operation:  types.OperationDelete,
	})

	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Details["table"] != "workflow_steps" || body.Error.Details["primary_key"] != "abc" {
		t.Fatalf("details = %v", body.Error.Details)
	}
}
