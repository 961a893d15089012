package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/craftbase/appbuilder-backend/internal/domain"
	"github.com/craftbase/appbuilder-backend/internal/pkg/dbctx"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
)

type openSession struct {
	checkpointID uuid.UUID
	scope        types.Scope
}

// sessionTracker is the explicit open-session state: at most one grouped
// session per scope key, process-local like the scope lock.
type sessionTracker struct {
	mu   sync.Mutex
	open map[string]*openSession
}

func (t *sessionTracker) lookup(key string) *openSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open[key]
}

func (t *sessionTracker) put(key string, s *openSession) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.open[key]; exists {
		return false
	}
	t.open[key] = s
	return true
}

func (t *sessionTracker) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.open, key)
}

// BeginSession opens the grouped checkpoint for a multi-step logical action.
// One open session per scope; a second begin fails with ErrSessionConflict.
func (s *checkpointService) BeginSession(ctx context.Context, scope types.Scope, description string) (*types.Checkpoint, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("invalid scope: %w", pkgerr.ErrInvalidArgument)
	}
	release, err := s.locks.Acquire(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	defer release()

	if s.sessions.lookup(scope.Key()) != nil {
		return nil, fmt.Errorf("scope %s: %w", scope.Key(), pkgerr.ErrSessionConflict)
	}

	cp := s.newCheckpoint(ctx, scope, description)
	if _, err := s.checkpoints.Create(dbctx.New(ctx), []*types.Checkpoint{cp}); err != nil {
		return nil, err
	}
	if !s.sessions.put(scope.Key(), &openSession{checkpointID: cp.ID, scope: scope}) {
		// Lost a race we should not be able to lose while holding the scope
		// lock; leave no dangling pending checkpoint behind.
		_ = s.checkpoints.Finish(dbctx.New(ctx), cp.ID, types.CheckpointRolledBack, time.Now().UTC())
		return nil, fmt.Errorf("scope %s: %w", scope.Key(), pkgerr.ErrSessionConflict)
	}
	return cp, nil
}

func (s *checkpointService) CommitSession(ctx context.Context, scope types.Scope, sessionID uuid.UUID) (*types.Checkpoint, error) {
	release, err := s.locks.Acquire(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	defer release()

	sess := s.sessions.lookup(scope.Key())
	if sess == nil || sess.checkpointID != sessionID {
		return nil, fmt.Errorf("session %s: %w", sessionID, pkgerr.ErrNotFound)
	}

	dbc := dbctx.New(ctx)
	cp, err := s.checkpoints.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, fmt.Errorf("session checkpoint %s: %w", sessionID, pkgerr.ErrNotFound)
	}
	now := time.Now().UTC()
	if err := s.checkpoints.Finish(dbc, cp.ID, types.CheckpointHistorical, now); err != nil {
		return nil, err
	}
	cp.Status = types.CheckpointHistorical
	cp.FinishedAt = &now
	s.sessions.remove(scope.Key())
	return cp, nil
}

// AbortSession reverses the session's committed steps (compensating rollback,
// not a held-open database transaction) and closes it as rolled_back.
func (s *checkpointService) AbortSession(ctx context.Context, scope types.Scope, sessionID uuid.UUID) (*types.Checkpoint, error) {
	sess := s.sessions.lookup(scope.Key())
	if sess == nil || sess.checkpointID != sessionID {
		return nil, fmt.Errorf("session %s: %w", sessionID, pkgerr.ErrNotFound)
	}

	cp, err := s.checkpoints.GetByID(dbctx.New(ctx), sessionID)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		s.sessions.remove(scope.Key())
		return nil, fmt.Errorf("session checkpoint %s: %w", sessionID, pkgerr.ErrNotFound)
	}

	if err := s.restore.Rollback(ctx, cp); err != nil {
		return nil, err
	}
	s.sessions.remove(scope.Key())

	cp, err = s.checkpoints.GetByID(dbctx.New(ctx), sessionID)
	if err != nil {
		return nil, err
	}
	return cp, nil
}
