package credentials

import (
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps credentials in process memory. It matches the lifetime
// of browser session storage: everything is gone when the process ends.
type MemoryStore struct {
	entries map[string]string
	lock    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

func (s *MemoryStore) Set(name, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries[name] = value
	return nil
}

func (s *MemoryStore) Get(name string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.entries[name]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemoryStore) Remove(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.entries, name)
	return nil
}
