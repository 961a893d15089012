package builder

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

type ApplicationRepo interface {
	Create(dbc dbctx.Context, apps []*types.Application) ([]*types.Application, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Application, error)
	List(dbc dbctx.Context) ([]*types.Application, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *applicationRepo) Create(dbc dbctx.Context, apps []*types.Application) ([]*types.Application, error) {
	if len(apps) == 0 {
		return []*types.Application{}, nil
	}
	if err := r.conn(dbc).WithContext(dbc.Ctx).Create(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Application, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var app types.Application
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) List(dbc dbctx.Context) ([]*types.Application, error) {
	var out []*types.Application
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) Delete(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Application{})
	return res.RowsAffected, res.Error
}
