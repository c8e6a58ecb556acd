package locker

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockCount(l *SessionLocker) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func lockRefs(l *SessionLocker, sessionId uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[sessionId]
	if !ok {
		return 0
	}
	return entry.refs
}

func TestLockSerializesSameSession(t *testing.T) {
	l := NewSessionLocker()
	sessionId := uuid.New()

	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(sessionId)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestLockReleasesEntryAfterLastUnlock(t *testing.T) {
	l := NewSessionLocker()

	first := uuid.New()
	second := uuid.New()

	unlockFirst := l.Lock(first)
	unlockSecond := l.Lock(second)
	require.Equal(t, 2, lockCount(l))

	unlockFirst()
	assert.Equal(t, 1, lockCount(l))

	unlockSecond()
	assert.Equal(t, 0, lockCount(l))
}

func TestLockKeepsEntryWhileContended(t *testing.T) {
	l := NewSessionLocker()
	sessionId := uuid.New()

	unlock := l.Lock(sessionId)

	waiterHolds := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan struct{})
	go func() {
		inner := l.Lock(sessionId)
		close(waiterHolds)
		<-proceed
		inner()
		close(done)
	}()

	// The waiter is counted even before it acquires, so the first unlock
	// must not evict the entry out from under it.
	require.Eventually(t, func() bool { return lockRefs(l, sessionId) == 2 }, time.Second, 5*time.Millisecond)
	unlock()
	<-waiterHolds
	require.Equal(t, 1, lockCount(l))
	close(proceed)
	<-done

	assert.Equal(t, 0, lockCount(l))
}
