package chat

import (
	"sync"
)

// Session is one live websocket attachment as the core sees it: an id, a
// best-effort outbound emit, and a close. The transport's *Client satisfies
// it; tests substitute a recorder.
type Session interface {
	ConnID() string
	Emit(event string, data any)
	Close()
}

// Registry is the presence registry: user id -> active session, with a
// reverse index so disconnect (which only knows the connection) can find
// the owner. Registration is last-writer-wins: one active session per user,
// a newer connection replaces and closes the older one. State is in-memory
// only; presence is rebuilt at the next authenticate after a restart.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Session // user id -> session
	byConn map[string]string  // conn id -> user id
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Session),
		byConn: make(map[string]string),
	}
}

// Register binds the user to the session, returning the session it replaced
// (nil if none) so the caller can close it.
func (r *Registry) Register(userID string, sess Session) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.byUser[userID]
	if old != nil {
		if old.ConnID() == sess.ConnID() {
			// Re-authenticate on the same connection; nothing to replace.
			return nil
		}
		delete(r.byConn, old.ConnID())
	}
	r.byUser[userID] = sess
	r.byConn[sess.ConnID()] = userID
	return old
}

// Lookup returns the user's active session if one is registered.
func (r *Registry) Lookup(userID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byUser[userID]
	return sess, ok
}

// UnregisterConn removes the mapping owned by the connection and returns the
// owning user. A connection that never authenticated, or whose mapping was
// already overwritten by a newer connection, yields ok=false and removes
// nothing.
func (r *Registry) UnregisterConn(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)
	if sess, ok := r.byUser[userID]; ok && sess.ConnID() == connID {
		delete(r.byUser, userID)
	}
	return userID, true
}

// Snapshot returns all registered sessions (for broadcast).
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Session, 0, len(r.byUser))
	for _, sess := range r.byUser {
		out = append(out, sess)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
