package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/craftbase/appbuilder-backend/internal/data/repos/testutil"
	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
)

func TestLocalScopeLockerSerializes(t *testing.T) {
	locker := NewLocalScopeLocker(testutil.Logger(t), time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	inCritical := 0
	maxConcurrent := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "app:x")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			inCritical++
			if inCritical > maxConcurrent {
				maxConcurrent = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxConcurrent != 1 {
		t.Fatalf("saw %d goroutines inside the lock at once", maxConcurrent)
	}
}

func TestLocalScopeLockerDifferentKeysIndependent(t *testing.T) {
	locker := NewLocalScopeLocker(testutil.Logger(t), 50*time.Millisecond)
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "app:a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, "app:b")
	if err != nil {
		t.Fatalf("acquire b while a is held: %v", err)
	}
	releaseB()
}

func TestLocalScopeLockerBusyTimeout(t *testing.T) {
	locker := NewLocalScopeLocker(testutil.Logger(t), 20*time.Millisecond)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "app:x")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	_, err = locker.Acquire(ctx, "app:x")
	if !errors.Is(err, pkgerr.ErrScopeBusy) {
		t.Fatalf("err = %v, want ErrScopeBusy", err)
	}
}

func TestLocalScopeLockerContextCancel(t *testing.T) {
	locker := NewLocalScopeLocker(testutil.Logger(t), time.Minute)

	release, err := locker.Acquire(context.Background(), "app:x")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = locker.Acquire(ctx, "app:x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLocalScopeLockerReleaseIdempotent(t *testing.T) {
	locker := NewLocalScopeLocker(testutil.Logger(t), time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "app:x")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()
	release()

	again, err := locker.Acquire(ctx, "app:x")
	if err != nil {
		t.Fatalf("reacquire after double release: %v", err)
	}
	again()
}
