package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore implements Store with an in-process map and lazy expiry,
// suitable for development and tests. Sessions round-trip through JSON so the
// semantics match the Redis store (no aliasing of the caller's value).
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the stored session or ErrNotFound once expired.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*chat.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, sessionID)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	var sess chat.Session
	if err := json.Unmarshal(entry.payload, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Put stores a snapshot of the session, re-arming the TTL.
func (s *MemoryStore) Put(_ context.Context, sess *chat.Session, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[sess.ID] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// SetClock overrides the store's clock; tests use it to step past the TTL.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
