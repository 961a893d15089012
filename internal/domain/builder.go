package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Application is the scope root every builder entity hangs off. Creating and
// deleting applications is housekeeping, not a checkpointed mutation.
type Application struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

// Builder entities below are what the schema-driven object store manages.
// Their write path always goes through the mutation interceptor; the structs
// exist for migration, registry metadata and typed reads.

type Workflow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppID       uuid.UUID `gorm:"type:uuid;not null;index" json:"app_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Position    int       `gorm:"column:position;not null" json:"position"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Workflow) TableName() string { return "workflows" }

type WorkflowStep struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AppID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"app_id"`
	WorkflowID uuid.UUID      `gorm:"type:uuid;not null;index" json:"workflow_id"`
	Name       string         `gorm:"column:name;not null" json:"name"`
	Kind       string         `gorm:"column:kind;not null" json:"kind"`
	Position   int            `gorm:"column:position;not null" json:"position"`
	Config     datatypes.JSON `gorm:"column:config;type:jsonb" json:"config,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (WorkflowStep) TableName() string { return "workflow_steps" }

type DataModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppID     uuid.UUID `gorm:"type:uuid;not null;index" json:"app_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Label     string    `gorm:"column:label" json:"label"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DataModel) TableName() string { return "data_models" }

type ModelField struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AppID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"app_id"`
	ModelID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"model_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Type      string         `gorm:"column:type;not null" json:"type"`
	Required  bool           `gorm:"column:required;not null" json:"required"`
	Position  int            `gorm:"column:position;not null" json:"position"`
	Options   datatypes.JSON `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (ModelField) TableName() string { return "model_fields" }

type RecordRow struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AppID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"app_id"`
	ModelID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"model_id"`
	Data      datatypes.JSON `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (RecordRow) TableName() string { return "records" }
