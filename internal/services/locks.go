package services

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLocks serializes mutating operations on the same session so that
// double-submitted trades, round completion and logout-triggered abandonment
// resolve deterministically. Sessions are independent; there is no
// cross-session locking.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSessionLocks creates a new lock registry
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the mutex for one session and returns the unlock func.
func (sl *SessionLocks) Lock(sessionID uuid.UUID) func() {
	sl.mu.Lock()
	lock, ok := sl.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		sl.locks[sessionID] = lock
	}
	sl.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
