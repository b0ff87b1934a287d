package shared

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SalesLockKey builds redis keys for the per-record transition critical section.
func SalesLockKey(saleID string) string {
	return fmt.Sprintf("sales:record:%s:lock", saleID)
}

// RecordLocker serialises mutations of a single record across processes.
type RecordLocker interface {
	// Acquire blocks until the lock is held, the wait budget is spent or ctx ends.
	// The returned func releases the lock.
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

// LockOptions tunes lock lifetime and waiting.
type LockOptions struct {
	TTL   time.Duration
	Wait  time.Duration
	Retry time.Duration
}

func (o LockOptions) withDefaults() LockOptions {
	if o.TTL <= 0 {
		o.TTL = 10 * time.Second
	}
	if o.Wait <= 0 {
		o.Wait = 3 * time.Second
	}
	if o.Retry <= 0 {
		o.Retry = 25 * time.Millisecond
	}
	return o
}

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements RecordLocker with SET NX PX.
type RedisLocker struct {
	client *redis.Client
	opts   LockOptions
}

// NewRedisLocker constructs a RedisLocker.
func NewRedisLocker(client *redis.Client, opts LockOptions) *RedisLocker {
	return &RedisLocker{client: client, opts: opts.withDefaults()}
}

// Acquire implements RecordLocker.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.opts.Wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
				if err != nil {
					return fmt.Errorf("release lock %s: %w", key, err)
				}
				if n == 0 {
					return ErrLockNotHeld
				}
				return nil
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.opts.Retry):
		}
	}
}

// MemoryLocker is a process-local RecordLocker used when redis is unavailable and in tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
	wait time.Duration
}

// NewMemoryLocker constructs a MemoryLocker.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &MemoryLocker{held: make(map[string]chan struct{}), wait: wait}
}

// Acquire implements RecordLocker.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			var once sync.Once
			return func(context.Context) error {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(done)
				})
				return nil
			}, nil
		}
		l.mu.Unlock()
		select {
		case <-ch:
		case <-timer.C:
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
