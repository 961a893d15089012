package app

import (
	"gorm.io/gorm"

	httpH "github.com/craftbase/appbuilder-backend/internal/http/handlers"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Application *httpH.ApplicationHandler
	Record      *httpH.RecordHandler
	Checkpoint  *httpH.CheckpointHandler
	Session     *httpH.SessionHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Application: httpH.NewApplicationHandler(s.Application),
		Record:      httpH.NewRecordHandler(s.Record),
		Checkpoint:  httpH.NewCheckpointHandler(s.History, s.Restore),
		Session:     httpH.NewSessionHandler(s.Checkpoint),
	}
}
