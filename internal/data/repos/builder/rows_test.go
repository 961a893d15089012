package builder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/data/repos/testutil"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
)

func workflowRow(appID uuid.UUID, name string) map[string]interface{} {
	now := time.Now().UTC()
	return map[string]interface{}{
		"id":         uuid.New().String(),
		"app_id":     appID.String(),
		"name":       name,
		"position":   1,
		"created_at": now,
		"updated_at": now,
	}
}

func TestRowStoreRoundTrip(t *testing.T) {
	gdb := testutil.DB(t)
	store := NewRowStore(gdb, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	app := testutil.SeedApplication(t, ctx, gdb, "app")
	row := workflowRow(app.ID, "round trip")
	id := row["id"].(string)

	if err := store.Insert(dbc, "workflows", row); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.Get(dbc, "workflows", "id", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("inserted row not found")
	}
	if got["name"] != "round trip" {
		t.Fatalf("name = %v", got["name"])
	}
	if _, isBytes := got["id"].([]byte); isBytes {
		t.Fatal("scanned values not normalized to string")
	}

	n, err := store.Update(dbc, "workflows", "id", id, map[string]interface{}{"name": "renamed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 1 {
		t.Fatalf("update touched %d rows", n)
	}
	got, _ = store.Get(dbc, "workflows", "id", id)
	if got["name"] != "renamed" {
		t.Fatalf("name after update = %v", got["name"])
	}

	n, err = store.Delete(dbc, "workflows", "id", id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("delete touched %d rows", n)
	}
	got, err = store.Get(dbc, "workflows", "id", id)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("row survived delete: %+v", got)
	}
}

func TestRowStoreMissingRowIsNilNil(t *testing.T) {
	gdb := testutil.DB(t)
	store := NewRowStore(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	got, err := store.Get(dbc, "workflows", "id", uuid.New().String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v", got)
	}

	n, err := store.Delete(dbc, "workflows", "id", uuid.New().String())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("delete of missing row touched %d", n)
	}
}

func TestRowStoreRejectsBadIdentifiers(t *testing.T) {
	gdb := testutil.DB(t)
	store := NewRowStore(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	for _, table := range []string{"", "Workflows", "workflows; DROP TABLE x", "workflows--"} {
		if _, err := store.Get(dbc, table, "id", "x"); !errors.Is(err, pkgerr.ErrInvalidArgument) {
			t.Fatalf("table %q: err = %v, want ErrInvalidArgument", table, err)
		}
	}
	if _, err := store.Get(dbc, "workflows", "id = 1 OR", "x"); !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("bad pk column accepted: %v", err)
	}
}

func TestRowStorePerAppOperations(t *testing.T) {
	gdb := testutil.DB(t)
	store := NewRowStore(gdb, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	app := testutil.SeedApplication(t, ctx, gdb, "app")
	other := testutil.SeedApplication(t, ctx, gdb, "other")

	for _, name := range []string{"a", "b"} {
		if err := store.Insert(dbc, "workflows", workflowRow(app.ID, name)); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}
	if err := store.Insert(dbc, "workflows", workflowRow(other.ID, "c")); err != nil {
		t.Fatalf("insert c: %v", err)
	}

	rows, err := store.ListByApp(dbc, "workflows", app.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("listed %d rows, want 2", len(rows))
	}

	n, err := store.DeleteByApp(dbc, "workflows", app.ID)
	if err != nil {
		t.Fatalf("delete by app: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted %d rows, want 2", n)
	}
	left, err := store.ListByApp(dbc, "workflows", other.ID)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("other app has %d rows, want 1", len(left))
	}
}
