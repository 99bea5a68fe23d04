// Package compare manages the bounded set of properties a user has
// selected for side-by-side comparison. Sets are page-session scoped and
// ephemeral: the small bound makes reconstruction cheap, so nothing is
// persisted.
package compare

import (
	"errors"
	"sync"
	"time"
)

// DefaultLimit is the maximum comparison set size.
const DefaultLimit = 4

// Errors surfaced as user notices, not failures.
var (
	ErrSetFull   = errors.New("comparison set is full")
	ErrDuplicate = errors.New("property is already in the comparison set")
)

type session struct {
	ids     []int64
	touched time.Time
}

// Manager holds per-session comparison sets and sweeps idle sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	limit    int
	ttl      time.Duration
}

// NewManager creates a manager. limit <= 0 falls back to DefaultLimit.
func NewManager(limit int, ttl time.Duration) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*session),
		limit:    limit,
		ttl:      ttl,
	}
}

// Limit returns the configured maximum set size.
func (m *Manager) Limit() int {
	return m.limit
}

// Add appends a property to the session's set. Duplicates and additions
// beyond the limit are rejected.
func (m *Manager) Add(sessionID string, propertyID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[sessionID]
	if s == nil {
		s = &session{}
		m.sessions[sessionID] = s
	}
	s.touched = time.Now()

	for _, id := range s.ids {
		if id == propertyID {
			return ErrDuplicate
		}
	}
	if len(s.ids) >= m.limit {
		return ErrSetFull
	}
	s.ids = append(s.ids, propertyID)
	return nil
}

// Remove drops the property from the session's set; missing ids are a
// no-op.
func (m *Manager) Remove(sessionID string, propertyID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[sessionID]
	if s == nil {
		return
	}
	s.touched = time.Now()
	for i, id := range s.ids {
		if id == propertyID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Contains reports membership by id.
func (m *Manager) Contains(sessionID string, propertyID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[sessionID]
	if s == nil {
		return false
	}
	for _, id := range s.ids {
		if id == propertyID {
			return true
		}
	}
	return false
}

// List returns the session's set in insertion order.
func (m *Manager) List(sessionID string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[sessionID]
	if s == nil {
		return []int64{}
	}
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	removed := 0
	for id, s := range m.sessions {
		if s.touched.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
