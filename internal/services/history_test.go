package services

import (
	"context"
	"testing"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/schema"
)

func TestHistoryNewestFirstWithCounts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	app := e.seedApp(t, ctx)
	scope := types.AppScope(app.ID)

	_, cps := seedCreateUpdateDelete(t, e, ctx, scope)

	summaries, err := e.history.History(ctx, scope)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("history has %d checkpoints, want 3", len(summaries))
	}
	for i, want := range []*types.Checkpoint{cps[2], cps[1], cps[0]} {
		if summaries[i].ID != want.ID {
			t.Fatalf("position %d is %s, want %s", i, summaries[i].ID, want.ID)
		}
		if summaries[i].ChangesCount != 1 {
			t.Fatalf("checkpoint %s counts %d changes, want 1", want.ID, summaries[i].ChangesCount)
		}
	}
}

func TestHistoryIncludesRolledBackWithProvenance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	app := e.seedApp(t, ctx)
	scope := types.AppScope(app.ID)

	_, cps := seedCreateUpdateDelete(t, e, ctx, scope)
	if _, err := e.restore.Restore(ctx, scope, cps[0].ID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	summaries, err := e.history.History(ctx, scope)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("rolled-back checkpoints dropped from history: got %d", len(summaries))
	}
	rolledBack := 0
	for _, s := range summaries {
		if s.Status == types.CheckpointRolledBack {
			rolledBack++
		}
		if s.Source == "" {
			t.Fatalf("checkpoint %s lost its source", s.ID)
		}
	}
	if rolledBack != 2 {
		t.Fatalf("history shows %d rolled-back checkpoints, want 2", rolledBack)
	}
}

func TestCheckoutGroupsByCategory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	app := e.seedApp(t, ctx)
	scope := types.AppScope(app.ID)

	if _, _, err := e.record.CreateRow(ctx, scope, "workflows", map[string]interface{}{
		"name":     "flow",
		"position": 1,
	}); err != nil {
		t.Fatalf("create workflow: %v", err)
	}
	pause()
	if _, _, err := e.record.CreateRow(ctx, scope, "data_models", map[string]interface{}{
		"name": "contacts",
	}); err != nil {
		t.Fatalf("create data model: %v", err)
	}
	pause()
	if _, _, err := e.record.CreateRow(ctx, scope, "workflows", map[string]interface{}{
		"name":     "flow 2",
		"position": 2,
	}); err != nil {
		t.Fatalf("create second workflow: %v", err)
	}

	changes, err := e.history.Checkout(ctx, scope)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	byCategory := map[string]int{}
	for _, group := range changes {
		byCategory[group.Category] = len(group.Entries)
	}
	if byCategory[schema.CategoryWorkflow] != 2 {
		t.Fatalf("workflow category has %d entries, want 2", byCategory[schema.CategoryWorkflow])
	}
	if byCategory[schema.CategoryDataModel] != 1 {
		t.Fatalf("data model category has %d entries, want 1", byCategory[schema.CategoryDataModel])
	}
}

func TestCheckoutOmitsRolledBackEntries(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	app := e.seedApp(t, ctx)
	scope := types.AppScope(app.ID)

	_, cps := seedCreateUpdateDelete(t, e, ctx, scope)
	if _, err := e.restore.Restore(ctx, scope, cps[0].ID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	changes, err := e.history.Checkout(ctx, scope)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	total := 0
	for _, group := range changes {
		total += len(group.Entries)
	}
	// Only the surviving create remains visible.
	if total != 1 {
		t.Fatalf("checkout shows %d entries after restore, want 1", total)
	}
}
