package session

import (
	"sync"

	"github.com/brokerfix/acceptor/internal/port"
)

// Registry maps a logged-on SenderCompID to its live Session, the
// session table described in spec §5 ("reader-many, writer-few").
// Two connections racing to claim the same SenderCompID are resolved by
// Claim: the second Logon is refused (spec §9's open question, decided
// in favor of "reject the second Logon with Text 'Session already
// active'").
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ port.SessionRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Claim registers s under senderCompID, or reports false if another
// session already holds that identity.
func (r *Registry) Claim(senderCompID string, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[senderCompID]; exists {
		return false
	}
	r.sessions[senderCompID] = s
	return true
}

// Release removes the registration, if s is still the holder.
func (r *Registry) Release(senderCompID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[senderCompID]; ok && cur == s {
		delete(r.sessions, senderCompID)
	}
}

func (r *Registry) Lookup(senderCompID string) (port.Emitter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[senderCompID]
	if !ok {
		return nil, false
	}
	return s, true
}

// Count returns the number of currently registered sessions, used by
// the acceptor to enforce max_sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
