package dashboard

import (
	"sync"
	"time"
)

// Session owns the State of one browser client. Every change goes through
// Dispatch so concurrent requests from the same client serialize.
type Session struct {
	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

// Dispatch applies ev and returns the resulting state.
func (s *Session) Dispatch(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, ev)
	return s.state
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory, keyed by client ID.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

func NewSessionStore(idleTimeout time.Duration) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Get returns the session for clientID, creating it on first use.
func (ss *SessionStore) Get(clientID string) *Session {
	ss.mu.Lock()
	sess, ok := ss.sessions[clientID]
	if !ok {
		sess = &Session{state: NewState()}
		ss.sessions[clientID] = sess
	}
	ss.mu.Unlock()

	sess.touch(ss.now())
	return sess
}

// Len returns the number of live sessions.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns
// how many were removed.
func (ss *SessionStore) Sweep() int {
	if ss.idleTimeout <= 0 {
		return 0
	}
	cutoff := ss.now().Add(-ss.idleTimeout)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, sess := range ss.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}
