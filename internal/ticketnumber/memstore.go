package ticketnumber

import (
	"context"
	"errors"
	"sync"
)

// MemStore is an in-process CounterStore. The first Add(ctx, 1) returns 1.
type MemStore struct {
	mu      sync.Mutex
	counter int64
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) Add(_ context.Context, offset int64) (int64, error) {
	if offset < 1 {
		return 0, errors.New("bad offset")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter += offset
	return m.counter, nil
}

// Current returns the last value handed out.
func (m *MemStore) Current() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter
}
