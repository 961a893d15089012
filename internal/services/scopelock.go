package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

// ScopeLocker serializes writers per scope: the interceptor, the rollback
// engine and delete-all must never interleave on the same application.
// Acquire blocks until the lock is held, the wait budget runs out
// (ErrScopeBusy) or ctx is cancelled. The returned release func is
// idempotent.
type ScopeLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type scopeLock struct {
	ch   chan struct{}
	refs int
}

type localScopeLocker struct {
	log     *logger.Logger
	maxWait time.Duration

	mu    sync.Mutex
	locks map[string]*scopeLock
}

// NewLocalScopeLocker is the single-replica implementation: one keyed mutex
// per scope, entries dropped when nobody holds or waits.
func NewLocalScopeLocker(baseLog *logger.Logger, maxWait time.Duration) ScopeLocker {
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}
	return &localScopeLocker{
		log:     baseLog.With("service", "LocalScopeLocker"),
		maxWait: maxWait,
		locks:   map[string]*scopeLock{},
	}
}

func (l *localScopeLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, fmt.Errorf("empty scope key: %w", pkgerr.ErrInvalidArgument)
	}

	l.mu.Lock()
	sl := l.locks[key]
	if sl == nil {
		sl = &scopeLock{ch: make(chan struct{}, 1)}
		l.locks[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case sl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-sl.ch
				l.drop(key, sl)
			})
		}, nil
	case <-timer.C:
		l.drop(key, sl)
		return nil, fmt.Errorf("scope %s: %w", key, pkgerr.ErrScopeBusy)
	case <-ctx.Done():
		l.drop(key, sl)
		return nil, ctx.Err()
	}
}

func (l *localScopeLocker) drop(key string, sl *scopeLock) {
	l.mu.Lock()
	sl.refs--
	if sl.refs <= 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
