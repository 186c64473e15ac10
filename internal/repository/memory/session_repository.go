package memory

import (
	"sync"

	"inventory-agent-be/pkg/agent/state"

	"github.com/google/uuid"
)

// DefaultSessionLimit caps concurrently tracked sessions. A safety valve for
// memory, not an LRU: recency of use is not tracked.
const DefaultSessionLimit = 100

// SessionRepository is the in-memory session store. Eviction is by insertion
// order: when creating a session would exceed the cap, the oldest-created
// sessions go first.
type SessionRepository struct {
	mu       sync.Mutex
	limit    int
	order    []string
	sessions map[string][]state.Turn
}

func NewSessionRepository(limit int) *SessionRepository {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return &SessionRepository{
		limit:    limit,
		sessions: make(map[string][]state.Turn),
	}
}

// GetOrCreate returns the history for id, minting a new session when id is
// empty or unknown. The returned slice is a copy; callers never alias the
// stored history.
func (r *SessionRepository) GetOrCreate(id string) (string, []state.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if history, ok := r.sessions[id]; ok {
			return id, copyTurns(history), nil
		}
	}

	newID := uuid.New().String()
	r.sessions[newID] = nil
	r.order = append(r.order, newID)
	r.evictLocked()

	return newID, nil, nil
}

// Put replaces the session's history wholesale. A session evicted while its
// request was in flight is quietly re-created.
func (r *SessionRepository) Put(id string, history []state.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		r.order = append(r.order, id)
	}
	r.sessions[id] = copyTurns(history)
	r.evictLocked()
	return nil
}

// Len reports how many sessions are currently tracked.
func (r *SessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRepository) evictLocked() {
	for len(r.order) > r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.sessions, oldest)
	}
}

func copyTurns(turns []state.Turn) []state.Turn {
	if turns == nil {
		return nil
	}
	out := make([]state.Turn, len(turns))
	copy(out, turns)
	return out
}
