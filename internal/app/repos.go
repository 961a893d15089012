package app

import (
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

type Repos struct {
	Application repos.ApplicationRepo
	Rows        repos.RowStore
	Checkpoint  repos.CheckpointRepo
	UndoLog     repos.UndoLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Application: repos.NewApplicationRepo(db, log),
		Rows:        repos.NewRowStore(db, log),
		Checkpoint:  repos.NewCheckpointRepo(db, log),
		UndoLog:     repos.NewUndoLogRepo(db, log),
	}
}
