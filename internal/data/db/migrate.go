package db

import (
	"gorm.io/gorm"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
)

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Application{},

		&types.Workflow{},
		&types.WorkflowStep{},
		&types.DataModel{},
		&types.ModelField{},
		&types.RecordRow{},

		&types.Checkpoint{},
		&types.UndoLogEntry{},
	)
}
