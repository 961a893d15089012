package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/data/repos/testutil"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
)

func TestUndoLogNextSequence(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewUndoLogRepo(gdb, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	app := testutil.SeedApplication(t, ctx, gdb, "app")
	cp := testutil.SeedCheckpoint(t, ctx, gdb, app.ID, types.CheckpointPending, time.Now().UTC())

	seq, err := repo.NextSequence(dbc, cp.ID)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if seq != 1 {
		t.Fatalf("empty checkpoint sequence = %d, want 1", seq)
	}

	testutil.SeedUndoEntry(t, ctx, gdb, cp.ID, 1, types.OperationCreate, "workflows", uuid.New().String(), nil)
	testutil.SeedUndoEntry(t, ctx, gdb, cp.ID, 2, types.OperationUpdate, "workflows", uuid.New().String(), []byte(`{"name":"x"}`))

	seq, err = repo.NextSequence(dbc, cp.ID)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if seq != 3 {
		t.Fatalf("sequence = %d, want 3", seq)
	}
}

func TestUndoLogListOrdering(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewUndoLogRepo(gdb, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	app := testutil.SeedApplication(t, ctx, gdb, "app")
	cp := testutil.SeedCheckpoint(t, ctx, gdb, app.ID, types.CheckpointHistorical, time.Now().UTC())

	// Insert out of order on purpose.
	for _, seq := range []int{2, 3, 1} {
		testutil.SeedUndoEntry(t, ctx, gdb, cp.ID, seq, types.OperationCreate, "workflows", uuid.New().String(), nil)
	}

	desc, err := repo.ListByCheckpointDesc(dbc, cp.ID)
	if err != nil {
		t.Fatalf("list desc: %v", err)
	}
	if len(desc) != 3 {
		t.Fatalf("listed %d, want 3", len(desc))
	}
	for i, want := range []int{3, 2, 1} {
		if desc[i].Sequence != want {
			t.Fatalf("desc[%d].Sequence = %d, want %d", i, desc[i].Sequence, want)
		}
	}

	asc, err := repo.ListByCheckpointIDs(dbc, []uuid.UUID{cp.ID})
	if err != nil {
		t.Fatalf("list asc: %v", err)
	}
	for i, want := range []int{1, 2, 3} {
		if asc[i].Sequence != want {
			t.Fatalf("asc[%d].Sequence = %d, want %d", i, asc[i].Sequence, want)
		}
	}
}

func TestUndoLogCountAndDelete(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewUndoLogRepo(gdb, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	app := testutil.SeedApplication(t, ctx, gdb, "app")
	now := time.Now().UTC()
	cpA := testutil.SeedCheckpoint(t, ctx, gdb, app.ID, types.CheckpointHistorical, now)
	cpB := testutil.SeedCheckpoint(t, ctx, gdb, app.ID, types.CheckpointHistorical, now.Add(time.Minute))
	cpEmpty := testutil.SeedCheckpoint(t, ctx, gdb, app.ID, types.CheckpointHistorical, now.Add(2*time.Minute))

	testutil.SeedUndoEntry(t, ctx, gdb, cpA.ID, 1, types.OperationCreate, "workflows", uuid.New().String(), nil)
	testutil.SeedUndoEntry(t, ctx, gdb, cpA.ID, 2, types.OperationDelete, "workflows", uuid.New().String(), []byte(`{"name":"gone"}`))
	testutil.SeedUndoEntry(t, ctx, gdb, cpB.ID, 1, types.OperationUpdate, "data_models", uuid.New().String(), []byte(`{"name":"old"}`))

	counts, err := repo.CountByCheckpointIDs(dbc, []uuid.UUID{cpA.ID, cpB.ID, cpEmpty.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[cpA.ID] != 2 || counts[cpB.ID] != 1 || counts[cpEmpty.ID] != 0 {
		t.Fatalf("counts = %v", counts)
	}

	n, err := repo.DeleteByCheckpointIDs(dbc, []uuid.UUID{cpA.ID, cpB.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 3 {
		t.Fatalf("deleted %d entries, want 3", n)
	}
	left, err := repo.ListByCheckpointIDs(dbc, []uuid.UUID{cpA.ID, cpB.ID})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("%d entries left", len(left))
	}
}
