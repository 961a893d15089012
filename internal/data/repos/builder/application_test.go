package builder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/data/repos/testutil"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
)

func TestApplicationRepoLifecycle(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewApplicationRepo(gdb, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	app := &types.Application{
		ID:        uuid.New(),
		Name:      "crm",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := repo.Create(dbc, []*types.Application{app}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(dbc, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "crm" {
		t.Fatalf("got %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("got %+v for random id", missing)
	}

	list, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d apps, want 1", len(list))
	}

	n, err := repo.Delete(dbc, app.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
}
