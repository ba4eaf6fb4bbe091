package lock

import (
	"context"
	"sync"

	"github.com/erp/storesync/internal/domain/integration"
	"golang.org/x/sync/semaphore"
)

// MemoryPassLocker serializes passes within one process with a
// weight-one semaphore per key.
type MemoryPassLocker struct {
	mu   sync.Mutex
	sems map[integration.PassKey]*semaphore.Weighted
}

var _ integration.PassLocker = (*MemoryPassLocker)(nil)

// NewMemoryPassLocker creates a MemoryPassLocker
func NewMemoryPassLocker() *MemoryPassLocker {
	return &MemoryPassLocker{sems: make(map[integration.PassKey]*semaphore.Weighted)}
}

// Acquire takes the key if it is free and fails with
// integration.ErrPassLocked otherwise.
func (l *MemoryPassLocker) Acquire(ctx context.Context, key integration.PassKey) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sem := l.semaphore(key)
	if !sem.TryAcquire(1) {
		return nil, integration.ErrPassLocked
	}
	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

func (l *MemoryPassLocker) semaphore(key integration.PassKey) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	return sem
}
