package offline

import (
	"context"
	"sync"
)

// MemoryStore keeps generations in process memory. It is the default when no
// cache database is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	order       []string
	generations map[string]map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{generations: make(map[string]map[string]Entry)}
}

func (s *MemoryStore) Open(_ context.Context, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open(generation)
	return nil
}

func (s *MemoryStore) open(generation string) map[string]Entry {
	entries, ok := s.generations[generation]
	if !ok {
		entries = make(map[string]Entry)
		s.generations[generation] = entries
		s.order = append(s.order, generation)
	}
	return entries
}

func (s *MemoryStore) PutAll(_ context.Context, generation string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := s.open(generation)
	for _, e := range entries {
		cache[e.URL] = cloneEntry(e)
	}
	return nil
}

func (s *MemoryStore) Match(_ context.Context, generation, url string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.generations[generation][url]
	if !ok {
		return Entry{}, false, nil
	}
	return cloneEntry(e), true, nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.order...), nil
}

func (s *MemoryStore) Delete(_ context.Context, generation string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.generations[generation]; !ok {
		return false, nil
	}
	delete(s.generations, generation)
	for i, name := range s.order {
		if name == generation {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (*MemoryStore) Close() error {
	return nil
}

func cloneEntry(e Entry) Entry {
	e.Header = e.Header.Clone()
	e.Body = append([]byte(nil), e.Body...)
	return e
}
