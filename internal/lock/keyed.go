package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	appErrors "parcel-relay/pkg/errors"
)

// Keyed serializes read-modify-write sequences per parcel while letting
// operations on different parcels run fully in parallel. Acquisition is
// bounded: contention past the timeout fails with ErrUnavailable instead
// of queueing forever.
type Keyed struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	timeout time.Duration
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewKeyed(timeout time.Duration) *Keyed {
	return &Keyed{
		entries: make(map[uuid.UUID]*entry),
		timeout: timeout,
	}
}

// Acquire blocks until the key's critical section is free or the bounded
// wait elapses. The returned release function must be called exactly once.
func (k *Keyed) Acquire(ctx context.Context, key uuid.UUID) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	acquireCtx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := e.sem.Acquire(acquireCtx, 1); err != nil {
		k.put(key, e)
		return nil, appErrors.NewAppError("LOCK_TIMEOUT", "could not acquire parcel lock", appErrors.ErrUnavailable)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.sem.Release(1)
			k.put(key, e)
		})
	}

	return release, nil
}

// put drops a reference and evicts the entry once nobody holds or waits on it.
func (k *Keyed) put(key uuid.UUID, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
}
