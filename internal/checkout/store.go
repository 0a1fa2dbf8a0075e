package checkout

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore tracks live checkout sessions by id. One session per mounted
// donation form; a completed session is replaced, not reused.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create issues a fresh session with a random id. The deps builder receives
// the id so per-session collaborators (overlay bridge, observers) can bind to
// it before the session exists.
func (st *SessionStore) Create(build func(id string) Deps) *Session {
	id := uuid.New().String()
	s := NewSession(id, build(id))
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s
}

func (st *SessionStore) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
