// AngelaMos | 2026
// memory.go

package session

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/edition-console/internal/config"
)

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return map[string]string{}, nil
	}

	return maps.Clone(e.values), nil
}

func (s *MemoryStore) Set(
	_ context.Context,
	id string,
	values map[string]string,
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		e = &memoryEntry{values: make(map[string]string, len(values))}
		s.entries[id] = e
	}

	maps.Copy(e.values, values)
	e.expiresAt = s.now().Add(ttl)

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil
	}

	for _, k := range keys {
		delete(e.values, k)
	}
	if len(e.values) == 0 {
		delete(s.entries, id)
	}

	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}

	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Kind() string {
	return config.SessionStoreMemory
}
