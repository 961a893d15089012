package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgerr "github.com/craftbase/appbuilder-backend/internal/pkg/errors"
	"github.com/craftbase/appbuilder-backend/internal/pkg/logger"
)

// releaseScript deletes the lock key only if it still holds our token, so a
// lock that expired and was re-acquired by another process is never clobbered.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`

// ScopeLocker is the distributed counterpart of the in-process scope lock:
// SET NX PX per scope key, polled until acquired or the wait budget runs out.
// Use it when more than one backend instance mutates the same database.
type ScopeLocker struct {
	log       *logger.Logger
	rdb       *goredis.Client
	prefix    string
	ttl       time.Duration
	maxWait   time.Duration
	pollEvery time.Duration
}

func NewScopeLocker(log *logger.Logger) (*ScopeLocker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ScopeLocker{
		log:       log.With("service", "RedisScopeLocker"),
		rdb:       rdb,
		prefix:    "scopelock:",
		ttl:       30 * time.Second,
		maxWait:   10 * time.Second,
		pollEvery: 50 * time.Millisecond,
	}, nil
}

func (l *ScopeLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis scope locker not initialized")
	}
	lockKey := l.prefix + key
	token := uuid.New().String()

	deadline := time.Now().Add(l.maxWait)
	ticker := time.NewTicker(l.pollEvery)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire scope lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(lockKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("scope %s: %w", key, pkgerr.ErrScopeBusy)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *ScopeLocker) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.rdb.Eval(ctx, releaseScript, []string{lockKey}, token).Err(); err != nil {
		l.log.Warn("scope lock release failed", "key", lockKey, "error", err)
	}
}

func (l *ScopeLocker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
