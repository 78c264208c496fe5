package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired entries are pruned
// every checkPeriod until Close is called.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore builds a MemoryStore and starts its pruning loop.
func NewMemoryStore(checkPeriod time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	if checkPeriod > 0 {
		go s.pruneLoop(checkPeriod)
	}
	return s
}

// Get returns a copy of the stored session.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return sess.clone(), nil
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess.clone()
	s.mu.Unlock()
	sess.dirty = false
	return nil
}

// Delete removes the session; unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the pruning loop.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *MemoryStore) pruneLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.prune(now)
		}
	}
}

func (s *MemoryStore) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
}
