package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	"github.com/craftbase/appbuilder-backend/internal/data/repos/testutil"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	"github.com/craftbase/appbuilder-backend/internal/schema"
)

type testEnv struct {
	db          *gorm.DB
	registry    *schema.Registry
	checkpoints repos.CheckpointRepo
	undo        repos.UndoLogRepo
	rows        repos.RowStore
	apps        repos.ApplicationRepo
	locker      ScopeLocker
	restore     RestoreService
	checkpoint  CheckpointService
	history     HistoryService
	record      RecordService
	application ApplicationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	registry := schema.Builder()

	checkpoints := repos.NewCheckpointRepo(gdb, log)
	undo := repos.NewUndoLogRepo(gdb, log)
	rows := repos.NewRowStore(gdb, log)
	apps := repos.NewApplicationRepo(gdb, log)

	locker := NewLocalScopeLocker(log, 2*time.Second)
	restore := NewRestoreService(gdb, log, registry, checkpoints, undo, rows, locker)
	checkpoint := NewCheckpointService(gdb, log, registry, checkpoints, undo, rows, restore, locker)
	history := NewHistoryService(log, registry, checkpoints, undo)
	record := NewRecordService(log, registry, rows, checkpoint)
	application := NewApplicationService(gdb, log, registry, apps, rows, restore)

	return &testEnv{
		db:          gdb,
		registry:    registry,
		checkpoints: checkpoints,
		undo:        undo,
		rows:        rows,
		apps:        apps,
		locker:      locker,
		restore:     restore,
		checkpoint:  checkpoint,
		history:     history,
		record:      record,
		application: application,
	}
}

func (e *testEnv) seedApp(t *testing.T, ctx context.Context) *types.Application {
	t.Helper()
	return testutil.SeedApplication(t, ctx, e.db, "test app")
}

func (e *testEnv) mustGetRow(t *testing.T, ctx context.Context, table, pk string) map[string]interface{} {
	t.Helper()
	row, err := e.rows.Get(dbctx.New(ctx), table, "id", pk)
	if err != nil {
		t.Fatalf("get %s/%s: %v", table, pk, err)
	}
	return row
}

func (e *testEnv) mustGetCheckpoint(t *testing.T, ctx context.Context, id uuid.UUID) *types.Checkpoint {
	t.Helper()
	cp, err := e.checkpoints.GetByID(dbctx.New(ctx), id)
	if err != nil {
		t.Fatalf("get checkpoint %s: %v", id, err)
	}
	if cp == nil {
		t.Fatalf("checkpoint %s missing", id)
	}
	return cp
}

// pause keeps created_at ordering unambiguous between quick successive
// checkpoints.
func pause() { time.Sleep(2 * time.Millisecond) }
