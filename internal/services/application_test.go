package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
)

func TestApplicationCreateValidatesName(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.application.Create(ctx, "  ", ""); !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}

	app, err := e.application.Create(ctx, "  CRM  ", "customer tracker")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if app.Name != "CRM" {
		t.Fatalf("name = %q, want trimmed", app.Name)
	}
}

func TestApplicationGetMissing(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.application.Get(context.Background(), uuid.New())
	if !errors.Is(err, pkgerr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApplicationDeleteRemovesRowsAndHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	app, err := e.application.Create(ctx, "doomed", "")
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	keeper, err := e.application.Create(ctx, "keeper", "")
	if err != nil {
		t.Fatalf("create keeper: %v", err)
	}

	row, _, err := e.record.CreateRow(ctx, types.AppScope(app.ID), "workflows", map[string]interface{}{
		"name":     "wf",
		"position": 1,
	})
	if err != nil {
		t.Fatalf("create row: %v", err)
	}
	pause()
	kept, _, err := e.record.CreateRow(ctx, types.AppScope(keeper.ID), "workflows", map[string]interface{}{
		"name":     "kept",
		"position": 1,
	})
	if err != nil {
		t.Fatalf("create kept row: %v", err)
	}

	if err := e.application.Delete(ctx, app.ID); err != nil {
		t.Fatalf("delete app: %v", err)
	}

	if _, err := e.application.Get(ctx, app.ID); !errors.Is(err, pkgerr.ErrNotFound) {
		t.Fatalf("deleted app still resolvable: %v", err)
	}
	if got := e.mustGetRow(t, ctx, "workflows", row["id"].(string)); got != nil {
		t.Fatalf("deleted app's row survived: %+v", got)
	}

	summaries, err := e.history.History(ctx, types.AppScope(app.ID))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("deleted app kept %d checkpoints", len(summaries))
	}

	// The other application is untouched.
	if got := e.mustGetRow(t, ctx, "workflows", kept["id"].(string)); got == nil {
		t.Fatal("unrelated app's row was deleted")
	}
	keeperHist, err := e.history.History(ctx, types.AppScope(keeper.ID))
	if err != nil {
		t.Fatalf("keeper history: %v", err)
	}
	if len(keeperHist) != 1 {
		t.Fatalf("keeper history has %d checkpoints, want 1", len(keeperHist))
	}
}

func TestApplicationDeleteMissing(t *testing.T) {
	e := newTestEnv(t)
	if err := e.application.Delete(context.Background(), uuid.New()); !errors.Is(err, pkgerr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
