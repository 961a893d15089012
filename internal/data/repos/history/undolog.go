package history

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

// UndoLogRepo is the append-only undo log store.
type UndoLogRepo interface {
	Append(dbc dbctx.Context, entries []*types.UndoLogEntry) error
	NextSequence(dbc dbctx.Context, checkpointID uuid.UUID) (int, error)
	ListByCheckpointDesc(dbc dbctx.Context, checkpointID uuid.UUID) ([]*types.UndoLogEntry, error)
	ListByCheckpointIDs(dbc dbctx.Context, checkpointIDs []uuid.UUID) ([]*types.UndoLogEntry, error)
	CountByCheckpointIDs(dbc dbctx.Context, checkpointIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DeleteByCheckpointIDs(dbc dbctx.Context, checkpointIDs []uuid.UUID) (int64, error)
}

type undoLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUndoLogRepo(db *gorm.DB, baseLog *logger.Logger) UndoLogRepo {
	return &undoLogRepo{db: db, log: baseLog.With("repo", "UndoLogRepo")}
}

func (r *undoLogRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *undoLogRepo) Append(dbc dbctx.Context, entries []*types.UndoLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.conn(dbc).WithContext(dbc.Ctx).Create(&entries).Error
}

func (r *undoLogRepo) NextSequence(dbc dbctx.Context, checkpointID uuid.UUID) (int, error) {
	var max int
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.UndoLogEntry{}).
		Where("checkpoint_id = ?", checkpointID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *undoLogRepo) ListByCheckpointDesc(dbc dbctx.Context, checkpointID uuid.UUID) ([]*types.UndoLogEntry, error) {
	var out []*types.UndoLogEntry
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("checkpoint_id = ?", checkpointID).
		Order("sequence DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *undoLogRepo) ListByCheckpointIDs(dbc dbctx.Context, checkpointIDs []uuid.UUID) ([]*types.UndoLogEntry, error) {
	var out []*types.UndoLogEntry
	if len(checkpointIDs) == 0 {
		return out, nil
	}
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("checkpoint_id IN ?", checkpointIDs).
		Order("sequence ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *undoLogRepo) CountByCheckpointIDs(dbc dbctx.Context, checkpointIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := map[uuid.UUID]int64{}
	if len(checkpointIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		CheckpointID uuid.UUID
		N            int64
	}
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.UndoLogEntry{}).
		Select("checkpoint_id, COUNT(*) AS n").
		Where("checkpoint_id IN ?", checkpointIDs).
		Group("checkpoint_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CheckpointID] = row.N
	}
	return counts, nil
}

func (r *undoLogRepo) DeleteByCheckpointIDs(dbc dbctx.Context, checkpointIDs []uuid.UUID) (int64, error) {
	if len(checkpointIDs) == 0 {
		return 0, nil
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Where("checkpoint_id IN ?", checkpointIDs).
		Delete(&types.UndoLogEntry{})
	return res.RowsAffected, res.Error
}
