package history

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

// CheckpointRepo is the checkpoint store. Pure persistence; lifecycle
// invariants are enforced by the interceptor and the rollback engine.
type CheckpointRepo interface {
	Create(dbc dbctx.Context, cps []*types.Checkpoint) ([]*types.Checkpoint, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Checkpoint, error)
	Finish(dbc dbctx.Context, id uuid.UUID, status types.CheckpointStatus, finishedAt time.Time) error
	ListByScope(dbc dbctx.Context, scope types.Scope, since *time.Time) ([]*types.Checkpoint, error)
	ListHistoricalAfter(dbc dbctx.Context, scope types.Scope, after time.Time, excludeID uuid.UUID) ([]*types.Checkpoint, error)
	ListIDsByScope(dbc dbctx.Context, scope types.Scope) ([]uuid.UUID, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type checkpointRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckpointRepo(db *gorm.DB, baseLog *logger.Logger) CheckpointRepo {
	return &checkpointRepo{db: db, log: baseLog.With("repo", "CheckpointRepo")}
}

func (r *checkpointRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func scopeFilter(q *gorm.DB, scope types.Scope) *gorm.DB {
	q = q.Where("app_id = ?", scope.AppID)
	if scope.ObjectID != nil {
		q = q.Where("object_id = ?", *scope.ObjectID)
	}
	return q
}

func (r *checkpointRepo) Create(dbc dbctx.Context, cps []*types.Checkpoint) ([]*types.Checkpoint, error) {
	if len(cps) == 0 {
		return []*types.Checkpoint{}, nil
	}
	if err := r.conn(dbc).WithContext(dbc.Ctx).Create(&cps).Error; err != nil {
		return nil, err
	}
	return cps, nil
}

func (r *checkpointRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Checkpoint, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var cp types.Checkpoint
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *checkpointRepo) Finish(dbc dbctx.Context, id uuid.UUID, status types.CheckpointStatus, finishedAt time.Time) error {
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Checkpoint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": finishedAt,
		}).Error
}

func (r *checkpointRepo) ListByScope(dbc dbctx.Context, scope types.Scope, since *time.Time) ([]*types.Checkpoint, error) {
	var out []*types.Checkpoint
	q := scopeFilter(r.conn(dbc).WithContext(dbc.Ctx).Model(&types.Checkpoint{}), scope)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkpointRepo) ListHistoricalAfter(dbc dbctx.Context, scope types.Scope, after time.Time, excludeID uuid.UUID) ([]*types.Checkpoint, error) {
	var out []*types.Checkpoint
	q := scopeFilter(r.conn(dbc).WithContext(dbc.Ctx).Model(&types.Checkpoint{}), scope).
		Where("status = ?", types.CheckpointHistorical).
		Where("created_at > ?", after)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkpointRepo) ListIDsByScope(dbc dbctx.Context, scope types.Scope) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	q := scopeFilter(r.conn(dbc).WithContext(dbc.Ctx).Model(&types.Checkpoint{}), scope)
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *checkpointRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Checkpoint{})
	return res.RowsAffected, res.Error
}
