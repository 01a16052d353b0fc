package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore - хранилище контекстов в памяти процесса с TTL.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	data      Context
	expiresAt time.Time
}

// NewMemoryStore создаёт хранилище и запускает очистку просроченных записей до отмены ctx.
func NewMemoryStore(ctx context.Context, ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
	}
	go s.cleanup(ctx, 5*time.Minute)
	return s
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		// просроченные удалит cleanup
		return Context{}, ErrNotFound
	}
	return entry.data, nil
}

func (s *MemoryStore) Save(_ context.Context, c Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[c.SessionID] = &memoryEntry{
		data:      c,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeExpired(time.Now())
		}
	}
}

func (s *MemoryStore) purgeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
