package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// KV is the slice of the redis client the store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ErrNotFound is returned by KV.Get for a missing key.
var ErrNotFound = errors.New("session: key not found")

type redisKV struct {
	cli *redis.Client
}

func NewRedisKV(ctx context.Context, addr, password string, db int) (KV, func() error, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("session.NewRedisKV: %w", err)
	}

	return &redisKV{cli: c}, c.Close, nil
}

func (c *redisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := c.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (c *redisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *redisKV) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

var _ Store[struct{}] = (*Redis[struct{}])(nil)

// Redis stores JSON-encoded values under "<prefix>:<user id>" with a sliding TTL,
// so an abandoned conversation expires on its own.
type Redis[T any] struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

func NewRedis[T any](kv KV, prefix string, ttl time.Duration) *Redis[T] {
	return &Redis[T]{kv: kv, prefix: prefix, ttl: ttl}
}

func (s *Redis[T]) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

func (s *Redis[T]) Get(ctx context.Context, userID int64) (T, bool, error) {
	var v T

	data, err := s.kv.Get(ctx, s.key(userID))
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("session.Redis.Get: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return v, false, fmt.Errorf("session.Redis.Get: %w", err)
	}

	return v, true, nil
}

func (s *Redis[T]) Set(ctx context.Context, userID int64, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session.Redis.Set: %w", err)
	}

	if err := s.kv.Set(ctx, s.key(userID), data, s.ttl); err != nil {
		return fmt.Errorf("session.Redis.Set: %w", err)
	}

	return nil
}

func (s *Redis[T]) Delete(ctx context.Context, userID int64) error {
	if err := s.kv.Del(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("session.Redis.Delete: %w", err)
	}

	return nil
}
