package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/legallink/assist/internal/domain"
)

// MemoryStore is an in-process SessionStore. It backs the resilient wrapper
// when the durable store is unavailable and is handy in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

// Get retrieves a session by its ID.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(session), nil
}

// Create persists a new session.
func (s *MemoryStore) Create(ctx context.Context, session *domain.Session) error {
	return s.set(session)
}

// Update persists changes to an existing session.
func (s *MemoryStore) Update(ctx context.Context, session *domain.Session) error {
	return s.set(session)
}

func (s *MemoryStore) set(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.SessionID] = cloneSession(session)
	return nil
}

// cloneSession deep-copies the session's reference fields so a session handed
// out by Get (or held after Create/Update) never shares maps or history with
// the stored one. A turn's staged mutations reach the store only via Update.
func cloneSession(session *domain.Session) *domain.Session {
	copied := *session
	copied.QueryHistory = append([]domain.HistoryEntry(nil), session.QueryHistory...)
	copied.Memory = maps.Clone(session.Memory)
	copied.UserContext.Location = maps.Clone(session.UserContext.Location)
	if session.UserContext.Budget != nil {
		budget := *session.UserContext.Budget
		copied.UserContext.Budget = &budget
	}
	return &copied
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// CleanupExpired removes sessions whose last activity exceeds the TTL.
func (s *MemoryStore) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, session := range s.sessions {
		if session.Expired(ttl, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
