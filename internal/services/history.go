package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/craftbase/appbuilder-backend/internal/data/repos"
	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
	"github.com/craftbase/appbuilder-backend/internal/schema"
)

type CheckpointSummary struct {
	types.Checkpoint
	ChangesCount int64 `json:"changes_count"`
}

type CategoryChanges struct {
	Category string                `json:"category"`
	Entries  []*types.UndoLogEntry `json:"entries"`
}

// HistoryService is the read path: chronological history with provenance and
// the category-grouped checkout view. Projections only, no state transitions.
type HistoryService interface {
	History(ctx context.Context, scope types.Scope) ([]*CheckpointSummary, error)
	Checkout(ctx context.Context, scope types.Scope) ([]*CategoryChanges, error)
}

type historyService struct {
	log         *logger.Logger
	registry    *schema.Registry
	checkpoints repos.CheckpointRepo
	undo        repos.UndoLogRepo
}

func NewHistoryService(
	baseLog *logger.Logger,
	registry *schema.Registry,
	checkpoints repos.CheckpointRepo,
	undo repos.UndoLogRepo,
) HistoryService {
	return &historyService{
		log:         baseLog.With("service", "HistoryService"),
		registry:    registry,
		checkpoints: checkpoints,
		undo:        undo,
	}
}

func (s *historyService) History(ctx context.Context, scope types.Scope) ([]*CheckpointSummary, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("invalid scope: %w", pkgerr.ErrInvalidArgument)
	}
	dbc := dbctx.New(ctx)
	cps, err := s.checkpoints.ListByScope(dbc, scope, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(cps))
	for _, cp := range cps {
		ids = append(ids, cp.ID)
	}
	counts, err := s.undo.CountByCheckpointIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*CheckpointSummary, 0, len(cps))
	for _, cp := range cps {
		out = append(out, &CheckpointSummary{
			Checkpoint:   *cp,
			ChangesCount: counts[cp.ID],
		})
	}
	return out, nil
}

func (s *historyService) Checkout(ctx context.Context, scope types.Scope) ([]*CategoryChanges, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("invalid scope: %w", pkgerr.ErrInvalidArgument)
	}
	dbc := dbctx.New(ctx)
	cps, err := s.checkpoints.ListByScope(dbc, scope, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(cps))
	for _, cp := range cps {
		if cp.Status == types.CheckpointHistorical {
			ids = append(ids, cp.ID)
		}
	}
	entries, err := s.undo.ListByCheckpointIDs(dbc, ids)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]*types.UndoLogEntry{}
	for _, e := range entries {
		category := e.Table
		if sc, ok := s.registry.Lookup(e.Table); ok {
			category = sc.Category
		}
		grouped[category] = append(grouped[category], e)
	}

	out := make([]*CategoryChanges, 0, len(grouped))
	for category, list := range grouped {
		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].Sequence < list[j].Sequence
			}
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
		out = append(out, &CategoryChanges{Category: category, Entries: list})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
