package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis client. Zero values fall back to short timeouts
// suited to lock and dashboard traffic.
type Options struct {
	Addr         string
	DB           int
	DialTimeout  time.Duration
	IOTimeout    time.Duration
	PingDeadline time.Duration
}

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 2 * time.Second
	}
	if o.IOTimeout <= 0 {
		o.IOTimeout = time.Second
	}
	if o.PingDeadline <= 0 {
		o.PingDeadline = 5 * time.Second
	}
	return o
}

// New connects to addr with default options.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	return Open(ctx, Options{Addr: addr})
}

// Open creates a client and pings it. The client is returned even when the
// ping fails so callers may degrade to process-local locking.
func Open(ctx context.Context, opts Options) (*redis.Client, error) {
	opts = opts.withDefaults()
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.IOTimeout,
		WriteTimeout: opts.IOTimeout,
	})
	if err := Ping(ctx, client, opts.PingDeadline); err != nil {
		return client, err
	}
	return client, nil
}

// Ping checks reachability within deadline. A nil client is reported as unavailable.
func Ping(ctx context.Context, client *redis.Client, deadline time.Duration) error {
	if client == nil {
		return fmt.Errorf("platform/cache: no client")
	}
	pingCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("platform/cache: ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
