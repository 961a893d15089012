package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/schema"
)

// ApplicationService manages the scope root. Application create/delete is
// housekeeping, not a checkpointed mutation: deleting an application removes
// its builder rows and its entire change history together.
type ApplicationService interface {
	Create(ctx context.Context, name, description string) (*types.Application, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Application, error)
	List(ctx context.Context) ([]*types.Application, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type applicationService struct {
	db       *gorm.DB
	log      *logger.Logger
	registry *schema.Registry
	apps     repos.ApplicationRepo
	rows     repos.RowStore
	restore  RestoreService
}

func NewApplicationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	registry *schema.Registry,
	apps repos.ApplicationRepo,
	rows repos.RowStore,
	restore RestoreService,
) ApplicationService {
	return &applicationService{
		db:       db,
		log:      baseLog.With("service", "ApplicationService"),
		registry: registry,
		apps:     apps,
		rows:     rows,
		restore:  restore,
	}
}

func (s *applicationService) Create(ctx context.Context, name, description string) (*types.Application, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("application name required: %w", pkgerr.ErrInvalidArgument)
	}
	now := time.Now().UTC()
	app := &types.Application{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.apps.Create(dbctx.New(ctx), []*types.Application{app}); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	app, err := s.apps.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("application %s: %w", id, pkgerr.ErrNotFound)
	}
	return app, nil
}

func (s *applicationService) List(ctx context.Context) ([]*types.Application, error) {
	return s.apps.List(dbctx.New(ctx))
}

func (s *applicationService) Delete(ctx context.Context, id uuid.UUID) error {
	app, err := s.apps.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return err
	}
	if app == nil {
		return fmt.Errorf("application %s: %w", id, pkgerr.ErrNotFound)
	}

	// No database-level FK constraints here, so the per-table clears are
	// independent and can fan out.
	g, gctx := errgroup.WithContext(ctx)
	for _, table := range s.registry.Tables() {
		table := table
		g.Go(func() error {
			_, err := s.rows.DeleteByApp(dbctx.New(gctx), table, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if _, err := s.restore.DeleteAll(ctx, types.AppScope(id)); err != nil {
		return err
	}

	_, err = s.apps.Delete(dbctx.New(ctx), id)
	if err != nil {
		return err
	}
	s.log.Info("application deleted", "app_id", id.String())
	return nil
}
