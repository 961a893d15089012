package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/schema"
)

// Columns the service owns; client payloads may not set them directly.
var reservedColumns = map[string]bool{
	"id":         true,
	"app_id":     true,
	"created_at": true,
	"updated_at": true,
}

// RecordService is the object-store write/read surface. Every mutation it
// accepts flows through the interceptor, so callers get exactly one undo-log
// entry per accepted write and never talk to the undo log directly.
type RecordService interface {
	CreateRow(ctx context.Context, scope types.Scope, table string, fields map[string]interface{}) (map[string]interface{}, *types.Checkpoint, error)
	UpdateRow(ctx context.Context, scope types.Scope, table, id string, changes map[string]interface{}) (map[string]interface{}, *types.Checkpoint, error)
	DeleteRow(ctx context.Context, scope types.Scope, table, id string) (*types.Checkpoint, error)
	GetRow(ctx context.Context, scope types.Scope, table, id string) (map[string]interface{}, error)
	ListRows(ctx context.Context, scope types.Scope, table string) ([]map[string]interface{}, error)
}

type recordService struct {
	log         *logger.Logger
	registry    *schema.Registry
	rows        repos.RowStore
	interceptor CheckpointService
}

func NewRecordService(
	baseLog *logger.Logger,
	registry *schema.Registry,
	rows repos.RowStore,
	interceptor CheckpointService,
) RecordService {
	return &recordService{
		log:         baseLog.With("service", "RecordService"),
		registry:    registry,
		rows:        rows,
		interceptor: interceptor,
	}
}

func (s *recordService) lookupTable(table string) (schema.RowSchema, error) {
	sc, ok := s.registry.Lookup(table)
	if !ok {
		return schema.RowSchema{}, fmt.Errorf("table %q: %w", table, pkgerr.ErrNotFound)
	}
	return sc, nil
}

// humanizeTable turns "workflow_steps" into "workflow step" for descriptions.
func humanizeTable(table string) string {
	singular := strings.TrimSuffix(table, "s")
	return strings.ReplaceAll(singular, "_", " ")
}

func rowLabel(row map[string]interface{}) string {
	if row == nil {
		return ""
	}
	if name, ok := row["name"].(string); ok && name != "" {
		return name
	}
	return ""
}

func describe(verb, table string, row map[string]interface{}) string {
	kind := humanizeTable(table)
	if label := rowLabel(row); label != "" {
		return fmt.Sprintf("%s %s: %s", verb, kind, label)
	}
	return fmt.Sprintf("%s %s", verb, kind)
}

func rowInApp(row map[string]interface{}, appID uuid.UUID) bool {
	raw, ok := row["app_id"]
	if !ok {
		return false
	}
	switch v := raw.(type) {
	case string:
		parsed, err := uuid.Parse(v)
		return err == nil && parsed == appID
	case uuid.UUID:
		return v == appID
	default:
		return fmt.Sprintf("%v", raw) == appID.String()
	}
}

func (s *recordService) CreateRow(ctx context.Context, scope types.Scope, table string, fields map[string]interface{}) (map[string]interface{}, *types.Checkpoint, error) {
	sc, err := s.lookupTable(table)
	if err != nil {
		return nil, nil, err
	}
	if !scope.Valid() {
		return nil, nil, fmt.Errorf("invalid scope: %w", pkgerr.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	row := map[string]interface{}{}
	for k, v := range fields {
		if reservedColumns[k] {
			continue
		}
		row[k] = v
	}
	id := uuid.New()
	row[sc.PrimaryKeyColumn] = id.String()
	row["app_id"] = scope.AppID.String()
	row["created_at"] = now
	row["updated_at"] = now

	cp, err := s.interceptor.Intercept(ctx, Mutation{
		Scope:       scope,
		Table:       table,
		PrimaryKey:  id.String(),
		Operation:   types.OperationCreate,
		Description: describe("Added", table, row),
		Apply: func(dbc dbctx.Context) error {
			return s.rows.Insert(dbc, table, row)
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return row, cp, nil
}

func (s *recordService) UpdateRow(ctx context.Context, scope types.Scope, table, id string, changes map[string]interface{}) (map[string]interface{}, *types.Checkpoint, error) {
	sc, err := s.lookupTable(table)
	if err != nil {
		return nil, nil, err
	}
	updates := map[string]interface{}{}
	for k, v := range changes {
		if reservedColumns[k] {
			continue
		}
		updates[k] = v
	}
	if len(updates) == 0 {
		return nil, nil, fmt.Errorf("no updatable fields: %w", pkgerr.ErrInvalidArgument)
	}
	updates["updated_at"] = time.Now().UTC()

	cp, err := s.interceptor.Intercept(ctx, Mutation{
		Scope:       scope,
		Table:       table,
		PrimaryKey:  id,
		Operation:   types.OperationUpdate,
		Description: describe("Updated", table, changes),
		Apply: func(dbc dbctx.Context) error {
			n, err := s.rows.Update(dbc, table, sc.PrimaryKeyColumn, id, updates)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%s/%s: %w", table, id, pkgerr.ErrNotFound)
			}
			return nil
		},
	})
	if err != nil {
		return nil, nil, err
	}

	row, err := s.rows.Get(dbctx.New(ctx), table, sc.PrimaryKeyColumn, id)
	if err != nil {
		return nil, cp, err
	}
	return row, cp, nil
}

func (s *recordService) DeleteRow(ctx context.Context, scope types.Scope, table, id string) (*types.Checkpoint, error) {
	sc, err := s.lookupTable(table)
	if err != nil {
		return nil, err
	}

	// Best-effort label for the checkpoint description; the interceptor
	// captures the authoritative pre-image inside its transaction.
	pre, _ := s.rows.Get(dbctx.New(ctx), table, sc.PrimaryKeyColumn, id)

	return s.interceptor.Intercept(ctx, Mutation{
		Scope:       scope,
		Table:       table,
		PrimaryKey:  id,
		Operation:   types.OperationDelete,
		Description: describe("Deleted", table, pre),
		Apply: func(dbc dbctx.Context) error {
			n, err := s.rows.Delete(dbc, table, sc.PrimaryKeyColumn, id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%s/%s: %w", table, id, pkgerr.ErrNotFound)
			}
			return nil
		},
	})
}

func (s *recordService) GetRow(ctx context.Context, scope types.Scope, table, id string) (map[string]interface{}, error) {
	sc, err := s.lookupTable(table)
	if err != nil {
		return nil, err
	}
	row, err := s.rows.Get(dbctx.New(ctx), table, sc.PrimaryKeyColumn, id)
	if err != nil {
		return nil, err
	}
	if row == nil || !rowInApp(row, scope.AppID) {
		return nil, fmt.Errorf("%s/%s: %w", table, id, pkgerr.ErrNotFound)
	}
	return row, nil
}

func (s *recordService) ListRows(ctx context.Context, scope types.Scope, table string) ([]map[string]interface{}, error) {
	if _, err := s.lookupTable(table); err != nil {
		return nil, err
	}
	return s.rows.ListByApp(dbctx.New(ctx), table, scope.AppID)
}
