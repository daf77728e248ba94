package storage

import (
	"context"
	"fmt"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/structures"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const defaultLockTimeout = 2 * time.Second

// LockTable serializes mutations per user. Locks of different users are
// independent.
type LockTable struct {
	mu      sync.Mutex
	locks   map[string]*semaphore.Weighted
	timeout time.Duration
	metrics providers.MetricsProviderInterface
}

func NewLockTable(conf *structures.Config, metrics providers.MetricsProviderInterface) *LockTable {
	timeout := conf.Storage.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	return &LockTable{
		locks:   make(map[string]*semaphore.Weighted),
		timeout: timeout,
		metrics: metrics,
	}
}

func (lt *LockTable) get(userID string) *semaphore.Weighted {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	sem, ok := lt.locks[userID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		lt.locks[userID] = sem
	}
	return sem
}

// Lock acquires the user's exclusive lock. It fails with models.ErrBusy when
// the lock is not acquired within the configured timeout, or with the
// context error if ctx is done first.
func (lt *LockTable) Lock(ctx context.Context, userID string) (func(), error) {
	sem := lt.get(userID)

	lockCtx, cancel := context.WithTimeout(ctx, lt.timeout)
	defer cancel()

	if err := sem.Acquire(lockCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lt.metrics.IncLockTimeouts()
		return nil, fmt.Errorf("lock %s after %s: %w", userID, lt.timeout, models.ErrBusy)
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}
