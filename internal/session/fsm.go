// Package session tracks per-client conversational state for multi-step
// analysis requests: a client first supplies a ticker, then optionally an
// analysis mode.
package session

import (
	"sync"
	"time"
)

// State is one step of the request dialogue.
type State int

const (
	// StateIdle means no dialogue is in progress.
	StateIdle State = iota
	// StateAwaitingTicker means the client was asked for a ticker.
	StateAwaitingTicker
	// StateAwaitingMode means a ticker is set and a mode choice is pending.
	StateAwaitingMode
)

func (s State) String() string {
	switch s {
	case StateAwaitingTicker:
		return "awaiting_ticker"
	case StateAwaitingMode:
		return "awaiting_mode"
	default:
		return "idle"
	}
}

// Session is one client's dialogue progress.
type Session struct {
	State     State
	Ticker    string
	UpdatedAt time.Time
}

// Store holds sessions keyed by client id. Sessions idle longer than the TTL
// reset to idle on next access.
type Store struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a store; ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: map[string]*Session{},
	}
}

// Get returns the client's session, creating an idle one when absent or
// expired.
func (s *Store) Get(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.locked(id)
}

// AwaitTicker moves the client to the awaiting-ticker step.
func (s *Store) AwaitTicker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.locked(id)
	sess.State = StateAwaitingTicker
	sess.Ticker = ""
	sess.UpdatedAt = time.Now()
}

// SetTicker records the chosen ticker and moves to the awaiting-mode step.
func (s *Store) SetTicker(id, ticker string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.locked(id)
	sess.State = StateAwaitingMode
	sess.Ticker = ticker
	sess.UpdatedAt = time.Now()
}

// Reset returns the client to idle.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) locked(id string) *Session {
	sess, ok := s.sessions[id]
	if ok && s.ttl > 0 && time.Since(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		sess = &Session{State: StateIdle, UpdatedAt: time.Now()}
		s.sessions[id] = sess
	}
	return sess
}
