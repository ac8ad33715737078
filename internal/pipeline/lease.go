package pipeline

import (
	"errors"
	"sync"
)

// ErrRunInProgress is returned when a run for the same (source, city) pair
// is already executing in this process.
var ErrRunInProgress = errors.New("ingestion already in progress for this source and city")

// leaseTable serializes runs per (source, city). In-process only: a single
// writer owns the database file, so a cross-process lock is not needed.
type leaseTable struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newLeaseTable() *leaseTable {
	return &leaseTable{held: make(map[string]struct{})}
}

func (t *leaseTable) acquire(source, city string) error {
	key := source + "|" + city
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.held[key]; ok {
		return ErrRunInProgress
	}
	t.held[key] = struct{}{}
	return nil
}

func (t *leaseTable) release(source, city string) {
	key := source + "|" + city
	t.mu.Lock()
	delete(t.held, key)
	t.mu.Unlock()
}
