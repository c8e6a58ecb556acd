package chatview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Turn is the client-side rendering of a conversation turn. Pending turns
// are synthetic: their ids and timestamps are locally generated and replaced
// by the server's once a submission is confirmed.
type Turn struct {
	Id             uuid.UUID
	Role           string
	Content        string
	SequenceNumber int
	CreatedAt      time.Time
	Pending        bool
	InProgress     bool
}

// Session is the listing entry kept by the view.
type Session struct {
	Id    uuid.UUID
	Title string
}

// Backend is the server surface the view reconciles against.
type Backend interface {
	FetchTurns(ctx context.Context, sessionId uuid.UUID) ([]Turn, error)
	Submit(ctx context.Context, sessionId uuid.UUID, message string) error
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

// View mirrors one user's conversations: confirmed history per session plus
// at most one pending user/assistant pair for the active session. Confirmed
// history is cached until a write invalidates it.
type View struct {
	backend Backend

	// sessionId.String() -> []Turn, manual invalidation only
	confirmed *gocache.Cache

	mu            sync.Mutex
	activeSession uuid.UUID
	pending       []Turn
	sessions      []Session
}

func NewView(backend Backend) *View {
	return &View{
		backend:   backend,
		confirmed: gocache.New(gocache.NoExpiration, 0),
	}
}

// SwitchSession makes sessionId the active conversation. Any pending turns
// belong to the previous session and are dropped unconditionally.
func (v *View) SwitchSession(ctx context.Context, sessionId uuid.UUID) error {
	v.mu.Lock()
	v.pending = nil
	v.activeSession = sessionId
	v.mu.Unlock()

	_, err := v.loadConfirmed(ctx, sessionId)
	return err
}

// NewSession clears the active conversation and pending state so the next
// submission starts from an empty history.
func (v *View) NewSession(sessionId uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = nil
	v.activeSession = sessionId
	v.confirmed.Set(sessionId.String(), []Turn{}, gocache.NoExpiration)
}

// Turns returns the display list for the active session: confirmed history
// followed by any pending turns.
func (v *View) Turns() []Turn {
	v.mu.Lock()
	defer v.mu.Unlock()

	confirmed := v.cachedTurns(v.activeSession)
	out := make([]Turn, 0, len(confirmed)+len(v.pending))
	out = append(out, confirmed...)
	out = append(out, v.pending...)
	return out
}

// Submit sends message for the active session. The synthetic user turn and
// a typing placeholder are visible immediately; on confirmation both are
// replaced by the server's turns, on failure both disappear and the
// confirmed history is left untouched.
func (v *View) Submit(ctx context.Context, message string) error {
	v.mu.Lock()
	sessionId := v.activeSession
	now := time.Now()
	v.pending = []Turn{
		{Id: uuid.New(), Role: "user", Content: message, CreatedAt: now, Pending: true},
		{Id: uuid.New(), Role: "assistant", CreatedAt: now, Pending: true, InProgress: true},
	}
	v.mu.Unlock()

	err := v.backend.Submit(ctx, sessionId, message)

	// The turns persisted server-side whether or not this session is still
	// active, so the confirmed cache is stale either way.
	if err == nil {
		v.confirmed.Delete(sessionId.String())
	}

	v.mu.Lock()
	// A session switch while the call was in flight already cleared the
	// pending pair; its result must not leak into the new session.
	if v.activeSession != sessionId {
		v.mu.Unlock()
		return err
	}
	v.pending = nil
	v.mu.Unlock()

	if err != nil {
		return err
	}

	_, refetchErr := v.loadConfirmed(ctx, sessionId)
	return refetchErr
}

// LoadSessions refreshes the cached session list from the backend.
func (v *View) LoadSessions(ctx context.Context) ([]Session, error) {
	sessions, err := v.backend.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.sessions = sessions
	v.mu.Unlock()
	return sessions, nil
}

// Sessions returns the last loaded session list.
func (v *View) Sessions() []Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Session, len(v.sessions))
	copy(out, v.sessions)
	return out
}

// DeleteSession removes the session from the local list immediately and
// reconciles with the backend; on failure the previous list is restored.
func (v *View) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	v.mu.Lock()
	snapshot := make([]Session, len(v.sessions))
	copy(snapshot, v.sessions)

	kept := v.sessions[:0]
	for _, s := range v.sessions {
		if s.Id != sessionId {
			kept = append(kept, s)
		}
	}
	v.sessions = kept
	v.mu.Unlock()

	if err := v.backend.DeleteSession(ctx, sessionId); err != nil {
		v.mu.Lock()
		v.sessions = snapshot
		v.mu.Unlock()
		return err
	}

	v.confirmed.Delete(sessionId.String())
	return nil
}

func (v *View) loadConfirmed(ctx context.Context, sessionId uuid.UUID) ([]Turn, error) {
	if x, found := v.confirmed.Get(sessionId.String()); found {
		return x.([]Turn), nil
	}

	turns, err := v.backend.FetchTurns(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	v.confirmed.Set(sessionId.String(), turns, gocache.NoExpiration)
	return turns, nil
}

func (v *View) cachedTurns(sessionId uuid.UUID) []Turn {
	if x, found := v.confirmed.Get(sessionId.String()); found {
		return x.([]Turn)
	}
	return nil
}
