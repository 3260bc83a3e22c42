package server

import (
	"sync"

	"github.com/google/uuid"
)

// sessionRegistry serializes message handling per session. Each session id
// owns one lock; entries are reference counted so the map does not grow
// forever as sessions come and go.
type sessionRegistry struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{entries: make(map[string]*sessionEntry)}
}

// acquire blocks until the session lock is held and returns the release
// function.
func (r *sessionRegistry) acquire(sessionID string) func() {
	r.mu.Lock()
	entry, ok := r.entries[sessionID]
	if !ok {
		entry = &sessionEntry{}
		r.entries[sessionID] = entry
	}
	entry.refs++
	r.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		r.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(r.entries, sessionID)
		}
		r.mu.Unlock()
	}
}

// mintSessionID issues an id for connections that arrive without one.
func mintSessionID() string {
	return uuid.NewString()
}
