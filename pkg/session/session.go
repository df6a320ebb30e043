// Package session holds per-user state that lives only as long as the
// user's session and is never written to the sheet.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DeleteState is the confirmation state of one participant's delete button.
type DeleteState int

const (
	Idle DeleteState = iota
	PendingConfirmation
)

func (s DeleteState) String() string {
	if s == PendingConfirmation {
		return "pending_confirmation"
	}
	return "idle"
}

// Session tracks delete confirmations keyed by participant number. Records
// not present in the map are Idle.
type Session struct {
	ID string

	mu      sync.Mutex
	pending map[int]bool
}

func New() *Session {
	return &Session{ID: uuid.NewString(), pending: make(map[int]bool)}
}

func (s *Session) State(no int) DeleteState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[no] {
		return PendingConfirmation
	}
	return Idle
}

// RequestDelete moves a record to PendingConfirmation.
func (s *Session) RequestDelete(no int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[no] = true
}

func (s *Session) Cancel(no int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, no)
}

// Confirm reports whether a delete of no was pending, and clears it.
func (s *Session) Confirm(no int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.pending[no]
	delete(s.pending, no)
	return ok
}

// Reset returns every record to Idle. Callers invoke it after each save.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[int]bool)
}

// Pending lists the numbers awaiting confirmation, in no particular order.
func (s *Session) Pending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.pending))
	for no := range s.pending {
		out = append(out, no)
	}
	return out
}

// DefaultIdleTimeout is how long a stored session survives without use.
const DefaultIdleTimeout = 30 * time.Minute

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager hands out sessions by id. Sessions are kept in memory only, and
// only once they have state worth keeping; see Peek and Get.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	idle     time.Duration
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
}

// newSession keeps a client-supplied id when it is a well-formed UUID, so
// an id handed out by Peek still names the same session once stored.
func newSession(id string) *Session {
	s := New()
	if _, err := uuid.Parse(id); err == nil {
		s.ID = id
	}
	return s
}

// Peek returns the stored session for id. For an empty or unknown id it
// returns a fresh session that is not stored, so read-only requests never
// grow the manager.
func (m *Manager) Peek(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e.session
	}
	return newSession(id)
}

// Get returns the session for id, storing a new one when id is empty or
// unknown. Sessions idle for longer than the timeout are dropped first.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = now
		return e.session
	}
	s := newSession(id)
	m.sessions[s.ID] = &entry{session: s, lastSeen: now}
	return s
}

func (m *Manager) sweep(now time.Time) {
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.idle {
			delete(m.sessions, id)
		}
	}
}

// Forget drops a session and its state.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
