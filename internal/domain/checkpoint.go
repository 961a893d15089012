package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CheckpointStatus string

const (
	CheckpointPending    CheckpointStatus = "pending"
	CheckpointHistorical CheckpointStatus = "historical"
	CheckpointRolledBack CheckpointStatus = "rolled_back"
)

type ChangeSource string

const (
	SourceUI    ChangeSource = "ui"
	SourceAgent ChangeSource = "agent"
	SourceAPI   ChangeSource = "api"
)

func ParseChangeSource(s string) ChangeSource {
	switch ChangeSource(s) {
	case SourceUI, SourceAgent, SourceAPI:
		return ChangeSource(s)
	default:
		return SourceAPI
	}
}

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Checkpoint is one restorable unit of change. It stays pending only while a
// grouped session is open; after that only the rollback engine may move its
// status, and its undo-log entries are immutable once finished_at is set.
type Checkpoint struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AppID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_checkpoints_scope_created,priority:1" json:"app_id"`
	ObjectID    *uuid.UUID       `gorm:"type:uuid;index" json:"object_id,omitempty"`
	Description string           `gorm:"column:description;not null" json:"description"`
	Status      CheckpointStatus `gorm:"column:status;not null;index" json:"status"`
	Source      ChangeSource     `gorm:"column:source;not null" json:"source"`
	UserCommand string           `gorm:"column:user_command" json:"user_command,omitempty"`
	CreatedAt   time.Time        `gorm:"not null;index:idx_checkpoints_scope_created,priority:2" json:"created_at"`
	FinishedAt  *time.Time       `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (Checkpoint) TableName() string { return "checkpoints" }

func (c *Checkpoint) Scope() Scope {
	return Scope{AppID: c.AppID, ObjectID: c.ObjectID}
}

// UndoLogEntry records how to reverse one physical row mutation. Reversing a
// create deletes the row, reversing an update overwrites it with
// previous_data, reversing a delete re-inserts previous_data.
type UndoLogEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CheckpointID uuid.UUID      `gorm:"type:uuid;not null;index:idx_undo_log_checkpoint_seq,priority:1" json:"checkpoint_id"`
	Sequence     int            `gorm:"column:sequence;not null;index:idx_undo_log_checkpoint_seq,priority:2" json:"sequence"`
	Operation    Operation      `gorm:"column:operation;not null" json:"operation"`
	Table        string         `gorm:"column:table_name;not null" json:"table_name"`
	PrimaryKey   string         `gorm:"column:primary_key;not null" json:"primary_key"`
	PreviousData datatypes.JSON `gorm:"column:previous_data;type:jsonb" json:"previous_data,omitempty"`
	NewData      datatypes.JSON `gorm:"column:new_data;type:jsonb" json:"new_data,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (UndoLogEntry) TableName() string { return "undo_log" }
