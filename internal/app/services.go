package app

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	redisclient "github.com/craftbase/appbuilder-backend/internal/clients/redis"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/schema"
	"github.com/craftbase/appbuilder-backend/internal/services"
)

type Services struct {
	Locker      services.ScopeLocker
	Restore     services.RestoreService
	Checkpoint  services.CheckpointService
	History     services.HistoryService
	Record      services.RecordService
	Application services.ApplicationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, registry *schema.Registry, r Repos) (Services, error) {
	log.Info("Wiring services...")

	locker, err := wireScopeLocker(log, cfg)
	if err != nil {
		return Services{}, err
	}

	restore := services.NewRestoreService(db, log, registry, r.Checkpoint, r.UndoLog, r.Rows, locker)
	checkpoint := services.NewCheckpointService(db, log, registry, r.Checkpoint, r.UndoLog, r.Rows, restore, locker)
	history := services.NewHistoryService(log, registry, r.Checkpoint, r.UndoLog)
	record := services.NewRecordService(log, registry, r.Rows, checkpoint)
	application := services.NewApplicationService(db, log, registry, r.Application, r.Rows, restore)

	return Services{
		Locker:      locker,
		Restore:     restore,
		Checkpoint:  checkpoint,
		History:     history,
		Record:      record,
		Application: application,
	}, nil
}

func wireScopeLocker(log *logger.Logger, cfg Config) (services.ScopeLocker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LockBackend)) {
	case "", "local":
		return services.NewLocalScopeLocker(log, cfg.LockMaxWait), nil
	case "redis":
		locker, err := redisclient.NewScopeLocker(log)
		if err != nil {
			return nil, fmt.Errorf("init redis scope locker: %w", err)
		}
		return locker, nil
	default:
		return nil, fmt.Errorf("unknown SCOPE_LOCK_BACKEND %q", cfg.LockBackend)
	}
}
