package services

import (
	"fmt"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
)

// RestoreConflictError reports the single reversal step that could not be
// applied because live data diverged from the recorded snapshot. The whole
// restore transaction is rolled back when this is returned.
type RestoreConflictError struct {
	Table      string
	PrimaryKey string
	Operation  types.Operation
	Err        error
}

func (e *RestoreConflictError) Error() string {
	msg := fmt.Sprintf("restore conflict on %s/%s reversing %s", e.Table, e.PrimaryKey, e.Operation)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RestoreConflictError) Unwrap() error { return e.Err }

// UndoLogWriteError reports an undo-log append that kept failing after the
// row mutation succeeded. The interceptor's transaction rolls the mutation
// back with it; the detail stays for reconciliation either way.
type UndoLogWriteError struct {
	Table      string
	PrimaryKey string
	Operation  types.Operation
	Err        error
}

func (e *UndoLogWriteError) Error() string {
	msg := fmt.Sprintf("undo log write failed for %s on %s/%s", e.Operation, e.Table, e.PrimaryKey)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *UndoLogWriteError) Unwrap() error { return e.Err }
