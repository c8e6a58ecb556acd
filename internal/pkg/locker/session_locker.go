package locker

import (
	"sync"

	"github.com/google/uuid"
)

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// SessionLocker serializes turn appends per chat session. "count + 1"
// sequence assignment is only safe when at most one submission per session
// is in flight; submissions to different sessions proceed independently.
// Entries are reference counted and removed once the last holder unlocks,
// so the map stays bounded by the number of in-flight submissions.
type SessionLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

func NewSessionLocker() *SessionLocker {
	return &SessionLocker{locks: make(map[uuid.UUID]*sessionLock)}
}

// Lock blocks until the session's lock is held and returns the unlock func.
func (l *SessionLocker) Lock(sessionId uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[sessionId]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionId] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionId)
		}
		l.mu.Unlock()
	}
}
