package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store keeps the isolated in-memory sessions of all connected browsers.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a store evicting sessions idle for longer than ttl.
// A non-positive ttl disables eviction.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create registers a new empty session under a random id.
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := New(id)
	sess.lastSeen = s.now()
	s.entries[id] = &entry{session: sess}

	return id
}

// Ensure returns id when it names a live session, otherwise a fresh session id.
func (s *Store) Ensure(id string) string {
	if id != "" {
		s.mu.Lock()
		_, ok := s.entries[id]
		s.mu.Unlock()
		if ok {
			return id
		}
	}
	return s.Create()
}

// With runs fn with exclusive access to the session. Requests for the same
// session are serialised; different sessions proceed independently.
func (s *Store) With(id string, fn func(*Session) error) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.lastSeen = s.now()
	return fn(e.session)
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.session.lastSeen.Before(cutoff)
		e.mu.Unlock()

		if idle {
			delete(s.entries, id)
			removed++
		}
	}

	return removed
}
