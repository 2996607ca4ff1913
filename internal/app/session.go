package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lodgechat/internal/domain"
)

// SessionManager keeps conversations in process memory. History is a bounded
// window; idle sessions are evicted. State is ephemeral — expiry only resets
// context for the next turn, it never fails an in-flight request.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	window   int
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessionManager(window int, idleTTL time.Duration) *SessionManager {
	if window <= 0 {
		window = 10
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &SessionManager{
		sessions: make(map[string]*domain.Session),
		window:   window,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, minting a fresh one when the id is
// missing, unknown, or expired. The returned value is a copy; callers never
// hold a reference into the store.
func (m *SessionManager) GetOrCreate(_ context.Context, id string) domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s, ok := m.sessions[id]; ok && now.Sub(s.LastSeen) < m.idleTTL {
		s.LastSeen = now
		return copySession(s)
	}

	s := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
	}
	m.sessions[s.ID] = s
	return copySession(s)
}

func (m *SessionManager) Append(_ context.Context, id string, t domain.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return // expired mid-request; next turn starts fresh
	}
	s.Turns = append(s.Turns, t)
	if len(s.Turns) > m.window {
		s.Turns = s.Turns[len(s.Turns)-m.window:]
	}
	s.LastSeen = m.now()
}

// Sweep drops idle sessions. Run it periodically from main.
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen) >= m.idleTTL {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func copySession(s *domain.Session) domain.Session {
	out := *s
	if n := len(s.Turns); n > 0 {
		out.Turns = make([]domain.Turn, n)
		copy(out.Turns, s.Turns)
	}
	return out
}
