package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/ctxutil"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/schema"
)

const undoAppendAttempts = 3

// Mutation is one physical row mutation presented to the interceptor.
// Apply must be the single write to Table and runs inside the interceptor's
// transaction; validation happens before a Mutation is built.
type Mutation struct {
	Scope       types.Scope
	Table       string
	PrimaryKey  string
	Operation   types.Operation
	Description string
	Apply       func(dbc dbctx.Context) error
}

// CheckpointService is the mutation interceptor plus the grouped-session
// lifecycle. Every accepted mutation produces exactly one undo-log entry, or
// nothing persists at all.
type CheckpointService interface {
	Intercept(ctx context.Context, m Mutation) (*types.Checkpoint, error)
	BeginSession(ctx context.Context, scope types.Scope, description string) (*types.Checkpoint, error)
	CommitSession(ctx context.Context, scope types.Scope, sessionID uuid.UUID) (*types.Checkpoint, error)
	AbortSession(ctx context.Context, scope types.Scope, sessionID uuid.UUID) (*types.Checkpoint, error)
}

type checkpointService struct {
	db          *gorm.DB
	log         *logger.Logger
	registry    *schema.Registry
	checkpoints repos.CheckpointRepo
	undo        repos.UndoLogRepo
	rows        repos.RowStore
	restore     RestoreService
	locks       ScopeLocker
	sessions    sessionTracker
}

func NewCheckpointService(
	db *gorm.DB,
	baseLog *logger.Logger,
	registry *schema.Registry,
	checkpoints repos.CheckpointRepo,
	undo repos.UndoLogRepo,
	rows repos.RowStore,
	restore RestoreService,
	locks ScopeLocker,
) CheckpointService {
	return &checkpointService{
		db:          db,
		log:         baseLog.With("service", "CheckpointService"),
		registry:    registry,
		checkpoints: checkpoints,
		undo:        undo,
		rows:        rows,
		restore:     restore,
		locks:       locks,
		sessions:    sessionTracker{open: map[string]*openSession{}},
	}
}

func validOperation(op types.Operation) bool {
	switch op {
	case types.OperationCreate, types.OperationUpdate, types.OperationDelete:
		return true
	default:
		return false
	}
}

// Intercept wraps one row mutation: capture the pre-image, resolve the
// checkpoint, apply, append the undo-log entry. All of it runs in one
// database transaction so the mutation/undo pair is atomic; the scope lock
// keeps concurrent writers and restores off this scope meanwhile.
func (s *checkpointService) Intercept(ctx context.Context, m Mutation) (*types.Checkpoint, error) {
	if !m.Scope.Valid() || m.Table == "" || m.PrimaryKey == "" || m.Apply == nil || !validOperation(m.Operation) {
		return nil, fmt.Errorf("incomplete mutation: %w", pkgerr.ErrInvalidArgument)
	}
	sc, ok := s.registry.Lookup(m.Table)
	if !ok {
		return nil, fmt.Errorf("table %q is not registered: %w", m.Table, pkgerr.ErrInvalidArgument)
	}

	release, err := s.locks.Acquire(ctx, m.Scope.Key())
	if err != nil {
		return nil, err
	}
	defer release()

	sess := s.sessions.lookup(m.Scope.Key())

	var cp *types.Checkpoint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		var prev datatypes.JSON
		if m.Operation != types.OperationCreate {
			row, err := s.rows.Get(dbc, m.Table, sc.PrimaryKeyColumn, m.PrimaryKey)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("%s/%s: %w", m.Table, m.PrimaryKey, pkgerr.ErrNotFound)
			}
			prev, err = encodeRow(row)
			if err != nil {
				return err
			}
		}

		cp, err = s.resolveCheckpoint(dbc, m, sess)
		if err != nil {
			return err
		}

		if err := m.Apply(dbc); err != nil {
			return err
		}

		var next datatypes.JSON
		if m.Operation != types.OperationDelete {
			row, err := s.rows.Get(dbc, m.Table, sc.PrimaryKeyColumn, m.PrimaryKey)
			if err != nil {
				return err
			}
			next, err = encodeRow(row)
			if err != nil {
				return err
			}
		}

		if err := s.appendEntry(dbc, cp.ID, m, prev, next); err != nil {
			return err
		}

		if sess == nil {
			now := time.Now().UTC()
			if err := s.checkpoints.Finish(dbc, cp.ID, types.CheckpointHistorical, now); err != nil {
				return err
			}
			cp.Status = types.CheckpointHistorical
			cp.FinishedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *checkpointService) resolveCheckpoint(dbc dbctx.Context, m Mutation, sess *openSession) (*types.Checkpoint, error) {
	if sess != nil {
		cp, err := s.checkpoints.GetByID(dbc, sess.checkpointID)
		if err != nil {
			return nil, err
		}
		if cp == nil || cp.Status != types.CheckpointPending {
			return nil, fmt.Errorf("session checkpoint %s is no longer open: %w", sess.checkpointID, pkgerr.ErrSessionConflict)
		}
		return cp, nil
	}

	cp := s.newCheckpoint(dbc.Ctx, m.Scope, m.Description)
	if _, err := s.checkpoints.Create(dbc, []*types.Checkpoint{cp}); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *checkpointService) newCheckpoint(ctx context.Context, scope types.Scope, description string) *types.Checkpoint {
	source := types.SourceAPI
	userCommand := ""
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		source = types.ParseChangeSource(rd.Source)
		userCommand = rd.UserCommand
	}
	if description == "" {
		description = "Unlabeled change"
	}
	return &types.Checkpoint{
		ID:          uuid.New(),
		AppID:       scope.AppID,
		ObjectID:    scope.ObjectID,
		Description: description,
		Status:      types.CheckpointPending,
		Source:      source,
		UserCommand: userCommand,
		CreatedAt:   time.Now().UTC(),
	}
}

func (s *checkpointService) appendEntry(dbc dbctx.Context, checkpointID uuid.UUID, m Mutation, prev, next datatypes.JSON) error {
	seq, err := s.undo.NextSequence(dbc, checkpointID)
	if err != nil {
		return err
	}
	entry := &types.UndoLogEntry{
		ID:           uuid.New(),
		CheckpointID: checkpointID,
		Sequence:     seq,
		Operation:    m.Operation,
		Table:        m.Table,
		PrimaryKey:   m.PrimaryKey,
		PreviousData: prev,
		NewData:      next,
		CreatedAt:    time.Now().UTC(),
	}

	var appendErr error
	for attempt := 1; attempt <= undoAppendAttempts; attempt++ {
		appendErr = s.undo.Append(dbc, []*types.UndoLogEntry{entry})
		if appendErr == nil {
			return nil
		}
		s.log.Warn("undo log append failed",
			"attempt", attempt,
			"table", m.Table,
			"primary_key", m.PrimaryKey,
			"operation", m.Operation,
			"error", appendErr,
		)
	}
	// An applied mutation without its undo entry may never persist; failing
	// here rolls the surrounding transaction, mutation included.
	return &UndoLogWriteError{
		Table:      m.Table,
		PrimaryKey: m.PrimaryKey,
		Operation:  m.Operation,
		Err:        appendErr,
	}
}
