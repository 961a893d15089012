package schema

import (
	"errors"
	"testing"

	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(RowSchema{Table: "things", PrimaryKeyColumn: "id", Category: "thing"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s, ok := r.Lookup("things")
	if !ok || s.PrimaryKeyColumn != "id" || s.Category != "thing" {
		t.Fatalf("Lookup: got %+v ok=%v", s, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing) should fail")
	}

	if err := r.Register(RowSchema{Table: "things", PrimaryKeyColumn: "id"}); !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("duplicate Register: want ErrInvalidArgument, got %v", err)
	}
	if err := r.Register(RowSchema{Table: "", PrimaryKeyColumn: "id"}); !errors.Is(err, pkgerr.ErrInvalidArgument) {
		t.Fatalf("empty table Register: want ErrInvalidArgument, got %v", err)
	}
}

func TestRegistryCategoryDefaultsToTable(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(RowSchema{Table: "widgets", PrimaryKeyColumn: "id"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s, _ := r.Lookup("widgets")
	if s.Category != "widgets" {
		t.Fatalf("Category: got %q, want table name fallback", s.Category)
	}
}

func TestBuilderRegistry(t *testing.T) {
	r := Builder()

	want := []string{"data_models", "model_fields", "records", "workflow_steps", "workflows"}
	got := r.Tables()
	if len(got) != len(want) {
		t.Fatalf("Tables: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tables: got %v, want %v", got, want)
		}
	}

	steps, ok := r.Lookup("workflow_steps")
	if !ok {
		t.Fatalf("workflow_steps not registered")
	}
	foundParent := false
	for _, fk := range steps.ForeignKeys {
		if fk.RefTable == "workflows" && fk.Column == "workflow_id" {
			foundParent = true
		}
	}
	if !foundParent {
		t.Fatalf("workflow_steps should declare workflow_id -> workflows.id, got %+v", steps.ForeignKeys)
	}

	if _, ok := r.Lookup("applications"); ok {
		t.Fatalf("applications must not be part of the intercepted store")
	}
}
