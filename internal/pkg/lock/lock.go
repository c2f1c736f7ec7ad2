// Package lock provides per-player mutual exclusion.
package lock

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// PlayerLock hands out one mutex per player ID. Entries are dropped once no
// goroutine holds or waits for them.
type PlayerLock struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// New creates an empty PlayerLock.
func New() *PlayerLock {
	return &PlayerLock{entries: make(map[int64]*entry)}
}

func (l *PlayerLock) acquire(playerID int64) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[playerID]
	if !ok {
		e = &entry{}
		l.entries[playerID] = e
	}
	e.refs++
	return e
}

func (l *PlayerLock) release(playerID int64, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, playerID)
	}
}

// Lock blocks until the player's lock is held.
func (l *PlayerLock) Lock(playerID int64) {
	l.acquire(playerID).mu.Lock()
}

// Unlock releases the player's lock. Unlocking a player that is not locked
// is a no-op.
func (l *PlayerLock) Unlock(playerID int64) {
	l.mu.Lock()
	e, ok := l.entries[playerID]
	l.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Unlock()
	l.release(playerID, e)
}

// TryLock acquires the player's lock without blocking.
func (l *PlayerLock) TryLock(playerID int64) bool {
	e := l.acquire(playerID)
	if e.mu.TryLock() {
		return true
	}
	l.release(playerID, e)
	return false
}

// LockContext waits for the player's lock until ctx is done or timeout
// elapses, returning ErrLockTimeout in that case.
func (l *PlayerLock) LockContext(ctx context.Context, playerID int64, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if l.TryLock(playerID) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrLockTimeout
		case <-ticker.C:
		}
	}
}

// Len returns the number of players with a live lock entry.
func (l *PlayerLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
