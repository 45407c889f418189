package session

import (
	"context"
	"sync"
)

// Store keeps one value per user. Implementations are safe for concurrent use.
type Store[T any] interface {
	Get(ctx context.Context, userID int64) (T, bool, error)
	Set(ctx context.Context, userID int64, value T) error
	Delete(ctx context.Context, userID int64) error
}

var _ Store[struct{}] = (*Memory[struct{}])(nil)

type Memory[T any] struct {
	mu     sync.RWMutex
	values map[int64]T
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{values: make(map[int64]T)}
}

func (m *Memory[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[userID]
	return v, ok, nil
}

func (m *Memory[T]) Set(_ context.Context, userID int64, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[userID] = value
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, userID)
	return nil
}

func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.values)
}
