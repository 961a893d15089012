package repos

import (
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/data/repos/builder"
	"github.com/craftbase/appbuilder-backend/internal/data/repos/history"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

type CheckpointRepo = history.CheckpointRepo
type UndoLogRepo = history.UndoLogRepo

type ApplicationRepo = builder.ApplicationRepo
type RowStore = builder.RowStore

func NewCheckpointRepo(db *gorm.DB, baseLog *logger.Logger) CheckpointRepo {
	return history.NewCheckpointRepo(db, baseLog)
}

func NewUndoLogRepo(db *gorm.DB, baseLog *logger.Logger) UndoLogRepo {
	return history.NewUndoLogRepo(db, baseLog)
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return builder.NewApplicationRepo(db, baseLog)
}

func NewRowStore(db *gorm.DB, baseLog *logger.Logger) RowStore {
	return builder.NewRowStore(db, baseLog)
}
