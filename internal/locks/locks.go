// Package locks provides in-process per-asset mutual exclusion for the
// conversion workflow. The workflow is deliberately not wrapped in one
// database transaction, so a row lock cannot cover it; this keyed lock holds
// each asset from the availability re-check through the reservation writes.
package locks

import (
	"context"
	"sort"
	"sync"
)

type entry struct {
	ch   chan struct{} // 1-buffered, holding the token means holding the lock
	refs int
}

type AssetLocker struct {
	mu      sync.Mutex
	entries map[uint]*entry
}

func NewAssetLocker() *AssetLocker {
	return &AssetLocker{entries: make(map[uint]*entry)}
}

func (l *AssetLocker) get(id uint) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[id] = e
	}
	e.refs++
	return e
}

func (l *AssetLocker) put(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[id]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, id)
	}
}

// Acquire locks every given asset id, in ascending order so two overlapping
// acquisitions cannot deadlock. It honors ctx cancellation/deadline; on any
// failure the already-held ids are released. The returned func releases all.
func (l *AssetLocker) Acquire(ctx context.Context, ids []uint) (func(), error) {
	sorted := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var held []uint
	release := func() {
		// Reverse order, matching acquisition discipline.
		for i := len(held) - 1; i >= 0; i-- {
			id := held[i]
			l.mu.Lock()
			e := l.entries[id]
			l.mu.Unlock()
			<-e.ch
			l.put(id)
		}
	}

	for _, id := range sorted {
		e := l.get(id)
		select {
		case e.ch <- struct{}{}:
			held = append(held, id)
		case <-ctx.Done():
			l.put(id)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}
