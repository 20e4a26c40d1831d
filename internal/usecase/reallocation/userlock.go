package reallocation

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks serializes mutating operations per user. Two concurrent mutations
// for the same user must never both validate against the same free balance or
// envelope balance; without this, two simultaneous contributions could pass
// validation against the same money and over-allocate.
//
// Entries are never evicted; the map is bounded by the number of distinct
// users this process has mutated.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// acquire blocks until the user's lock is held and returns the release func.
func (l *userLocks) acquire(userID uuid.UUID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
