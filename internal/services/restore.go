package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type RestoreResult struct {
	TargetID   uuid.UUID   `json:"target_id"`
	RolledBack []uuid.UUID `json:"rolled_back"`
	EntryCount int         `json:"entry_count"`
}

type DeleteAllResult struct {
	Checkpoints int64 `json:"checkpoints"`
	Entries     int64 `json:"entries"`
}

// RestoreService is the rollback engine. Restore reverses every historical
// checkpoint in the scope newer than the target, newest checkpoint first and
// highest sequence first within each, inside one database transaction.
type RestoreService interface {
	Restore(ctx context.Context, scope types.Scope, checkpointID uuid.UUID) (*RestoreResult, error)
	Rollback(ctx context.Context, cp *types.Checkpoint) error
	DeleteAll(ctx context.Context, scope types.Scope) (*DeleteAllResult, error)
}

type restoreService struct {
	db          *gorm.DB
	log         *logger.Logger
	registry    *schema.Registry
	checkpoints repos.CheckpointRepo
	undo        repos.UndoLogRepo
	rows        repos.RowStore
	locks       ScopeLocker
}

func NewRestoreService(
	db *gorm.DB,
	baseLog *logger.Logger,
	registry *schema.Registry,
	checkpoints repos.CheckpointRepo,
	undo repos.UndoLogRepo,
	rows repos.RowStore,
	locks ScopeLocker,
) RestoreService {
	return &restoreService{
		db:          db,
		log:         baseLog.With("service", "RestoreService"),
		registry:    registry,
		checkpoints: checkpoints,
		undo:        undo,
		rows:        rows,
		locks:       locks,
	}
}

func (s *restoreService) Restore(ctx context.Context, scope types.Scope, checkpointID uuid.UUID) (*RestoreResult, error) {
	if !scope.Valid() || checkpointID == uuid.Nil {
		return nil, fmt.Errorf("invalid restore target: %w", pkgerr.ErrInvalidArgument)
	}

	ctx, span := otel.Tracer("services.restore").Start(ctx, "restore")
	defer span.End()
	span.SetAttributes(
		attribute.String("scope", scope.String()),
		attribute.String("checkpoint_id", checkpointID.String()),
	)

	release, err := s.locks.Acquire(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	defer release()

	dbc := dbctx.New(ctx)
	target, err := s.checkpoints.GetByID(dbc, checkpointID)
	if err != nil {
		return nil, err
	}
	// A target inside an already-rolled-back window is treated as missing
	// rather than guessed at.
	if target == nil || target.AppID != scope.AppID || target.Status != types.CheckpointHistorical {
		return nil, fmt.Errorf("checkpoint %s: %w", checkpointID, pkgerr.ErrNotFound)
	}

	candidates, err := s.checkpoints.ListHistoricalAfter(dbc, types.AppScope(scope.AppID), target.CreatedAt, target.ID)
	if err != nil {
		return nil, err
	}

	res := &RestoreResult{TargetID: target.ID}
	if len(candidates) == 0 {
		return res, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		now := time.Now().UTC()
		for _, cp := range candidates {
			n, err := s.reverseCheckpoint(txc, cp, now)
			if err != nil {
				return err
			}
			res.EntryCount += n
			res.RolledBack = append(res.RolledBack, cp.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("restore applied",
		"scope", scope.String(),
		"target", target.ID.String(),
		"checkpoints_rolled_back", len(res.RolledBack),
		"entries_reversed", res.EntryCount,
	)
	return res, nil
}

// Rollback reverses exactly one checkpoint (used by session abort) and marks
// it rolled_back, in one transaction under the scope lock.
func (s *restoreService) Rollback(ctx context.Context, cp *types.Checkpoint) error {
	if cp == nil || cp.ID == uuid.Nil {
		return fmt.Errorf("missing checkpoint: %w", pkgerr.ErrInvalidArgument)
	}
	scope := cp.Scope()

	release, err := s.locks.Acquire(ctx, scope.Key())
	if err != nil {
		return err
	}
	defer release()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		_, err := s.reverseCheckpoint(txc, cp, time.Now().UTC())
		return err
	})
}

func (s *restoreService) reverseCheckpoint(dbc dbctx.Context, cp *types.Checkpoint, now time.Time) (int, error) {
	entries, err := s.undo.ListByCheckpointDesc(dbc, cp.ID)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := s.revertEntry(dbc, e); err != nil {
			return 0, err
		}
	}
	if err := s.checkpoints.Finish(dbc, cp.ID, types.CheckpointRolledBack, now); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *restoreService) revertEntry(dbc dbctx.Context, e *types.UndoLogEntry) error {
	conflict := func(err error) error {
		return &RestoreConflictError{
			Table:      e.Table,
			PrimaryKey: e.PrimaryKey,
			Operation:  e.Operation,
			Err:        err,
		}
	}

	sc, ok := s.registry.Lookup(e.Table)
	if !ok {
		return conflict(fmt.Errorf("table no longer registered"))
	}

	switch e.Operation {
	case types.OperationCreate:
		n, err := s.rows.Delete(dbc, e.Table, sc.PrimaryKeyColumn, e.PrimaryKey)
		if err != nil {
			return conflict(err)
		}
		if n == 0 {
			return conflict(fmt.Errorf("row already deleted out of band"))
		}
	case types.OperationUpdate:
		prev, err := decodeRow(e.PreviousData)
		if err != nil {
			return conflict(err)
		}
		n, err := s.rows.Update(dbc, e.Table, sc.PrimaryKeyColumn, e.PrimaryKey, prev)
		if err != nil {
			return conflict(err)
		}
		if n == 0 {
			return conflict(fmt.Errorf("row missing, snapshot cannot be reapplied"))
		}
	case types.OperationDelete:
		prev, err := decodeRow(e.PreviousData)
		if err != nil {
			return conflict(err)
		}
		if err := s.rows.Insert(dbc, e.Table, prev); err != nil {
			return conflict(err)
		}
	default:
		return conflict(fmt.Errorf("unknown operation %q", e.Operation))
	}
	return nil
}

// DeleteAll wipes the scope's checkpoints and undo-log entries without
// touching live data. Housekeeping only, and irreversible.
func (s *restoreService) DeleteAll(ctx context.Context, scope types.Scope) (*DeleteAllResult, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("invalid scope: %w", pkgerr.ErrInvalidArgument)
	}

	release, err := s.locks.Acquire(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	defer release()

	ids, err := s.checkpoints.ListIDsByScope(dbctx.New(ctx), scope)
	if err != nil {
		return nil, err
	}

	res := &DeleteAllResult{}
	if len(ids) == 0 {
		return res, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		entries, err := s.undo.DeleteByCheckpointIDs(txc, ids)
		if err != nil {
			return err
		}
		cps, err := s.checkpoints.DeleteByIDs(txc, ids)
		if err != nil {
			return err
		}
		res.Entries = entries
		res.Checkpoints = cps
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
