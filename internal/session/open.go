package session

import (
	"context"
	"time"
)

// Open returns a redis-backed store when addr is set and an in-memory one otherwise.
// The returned close func is never nil.
func Open[T any](ctx context.Context, addr, password string, db int, prefix string, ttl time.Duration) (Store[T], func() error, error) {
	if addr == "" {
		return NewMemory[T](), func() error { return nil }, nil
	}

	kv, closeFn, err := NewRedisKV(ctx, addr, password, db)
	if err != nil {
		return nil, nil, err
	}

	return NewRedis[T](kv, prefix, ttl), closeFn, nil
}
