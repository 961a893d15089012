package schema

import (
	"fmt"
	"sort"
	"sync"

	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
)

// ForeignKey declares that Column references RefColumn on RefTable. The
// rollback engine does not follow these at reversal time (ordering does the
// work); they exist so callers can explain and validate reversal order.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// RowSchema is the per-entity-kind contract the interceptor and rollback
// engine consume. One registration per table; no reflection at call time.
type RowSchema struct {
	Table            string       `json:"table"`
	PrimaryKeyColumn string       `json:"primary_key_column"`
	Category         string       `json:"category"`
	ForeignKeys      []ForeignKey `json:"foreign_keys,omitempty"`
}

type Registry struct {
	mu      sync.RWMutex
	byTable map[string]RowSchema
}

func NewRegistry() *Registry {
	return &Registry{byTable: map[string]RowSchema{}}
}

func (r *Registry) Register(s RowSchema) error {
	if s.Table == "" || s.PrimaryKeyColumn == "" {
		return fmt.Errorf("schema registration needs table and primary key column: %w", pkgerr.ErrInvalidArgument)
	}
	if s.Category == "" {
		s.Category = s.Table
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTable[s.Table]; exists {
		return fmt.Errorf("table %q already registered: %w", s.Table, pkgerr.ErrInvalidArgument)
	}
	r.byTable[s.Table] = s
	return nil
}

func (r *Registry) Lookup(table string) (RowSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byTable[table]
	return s, ok
}

func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byTable))
	for t := range r.byTable {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) All() []RowSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RowSchema, 0, len(r.byTable))
	for _, s := range r.byTable {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}
