package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
)

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func SeedApplication(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Application {
	tb.Helper()
	app := &types.Application{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(app).Error; err != nil {
		tb.Fatalf("seed application: %v", err)
	}
	return app
}

func SeedWorkflow(tb testing.TB, ctx context.Context, tx *gorm.DB, appID uuid.UUID, name string) *types.Workflow {
	tb.Helper()
	wf := &types.Workflow{
		ID:        uuid.New(),
		AppID:     appID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(wf).Error; err != nil {
		tb.Fatalf("seed workflow: %v", err)
	}
	return wf
}

func SeedCheckpoint(tb testing.TB, ctx context.Context, tx *gorm.DB, appID uuid.UUID, status types.CheckpointStatus, createdAt time.Time) *types.Checkpoint {
	tb.Helper()
	finished := createdAt
	cp := &types.Checkpoint{
		ID:          uuid.New(),
		AppID:       appID,
		Description: "seeded checkpoint",
		Status:      status,
		Source:      types.SourceAPI,
		CreatedAt:   createdAt,
		FinishedAt:  &finished,
	}
	if err := tx.WithContext(ctx).Create(cp).Error; err != nil {
		tb.Fatalf("seed checkpoint: %v", err)
	}
	return cp
}

func SeedUndoEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, checkpointID uuid.UUID, seq int, op types.Operation, table, pk string, prev []byte) *types.UndoLogEntry {
	tb.Helper()
	e := &types.UndoLogEntry{
		ID:           uuid.New(),
		CheckpointID: checkpointID,
		Sequence:     seq,
		Operation:    op,
		Table:        table,
		PrimaryKey:   pk,
		PreviousData: prev,
		CreatedAt:    time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed undo entry: %v", err)
	}
	return e
}
