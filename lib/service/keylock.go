package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
	"github.com/ziflex/lecho/v3"
)

// InvoiceLocker hands out exclusive per-key locks. Lock blocks until the lock
// is acquired or ctx is done.
type InvoiceLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// MemoryLocker serializes operations of a single process. An entry lives
// only as long as someone holds or waits for its key.
type MemoryLocker struct {
	locks *xsync.MapOf[string, *memoryLock]
}

type memoryLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: xsync.NewMapOf[string, *memoryLock]()}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	// refs is only touched inside Compute, which holds the bucket lock
	entry, _ := l.locks.Compute(key, func(entry *memoryLock, loaded bool) (*memoryLock, bool) {
		if !loaded {
			entry = &memoryLock{sem: make(chan struct{}, 1)}
		}
		entry.refs++
		return entry, false
	})
	select {
	case entry.sem <- struct{}{}:
		return func() {
			<-entry.sem
			l.release(key)
		}, nil
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}
}

func (l *MemoryLocker) release(key string) {
	l.locks.Compute(key, func(entry *memoryLock, loaded bool) (*memoryLock, bool) {
		if !loaded {
			return entry, true
		}
		entry.refs--
		return entry, entry.refs == 0
	})
}

const redisLockPrefix = "quokkahub:invoice-lock:"

// only delete the key if we still own it, the ttl may have handed it to someone else
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var errLockHeld = errors.New("lock is held")

// MinRedisLockTTL bounds how long a lock of a crashed holder can survive.
const MinRedisLockTTL = 30 * time.Second

// RedisLocker serializes operations across all instances sharing a redis.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *lecho.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *lecho.Logger) *RedisLocker {
	if ttl < MinRedisLockTTL {
		ttl = MinRedisLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := redisLockPrefix + key
	token := uuid.NewString()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 10 * time.Millisecond
	retry.MaxInterval = 250 * time.Millisecond
	retry.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}, backoff.WithContext(retry, ctx))
	if err != nil {
		return nil, err
	}

	return func() { l.release(redisKey, token) }, nil
}

func (l *RedisLocker) release(redisKey, token string) {
	err := releaseLockScript.Run(context.Background(), l.client, []string{redisKey}, token).Err()
	if err != nil && l.logger != nil {
		l.logger.Errorf("Could not release invoice lock %s, it expires in %s: %v", redisKey, l.ttl, err)
	}
}
