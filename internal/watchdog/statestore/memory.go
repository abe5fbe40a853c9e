package statestore

import "sync"

// MemoryStore is a Store that lives only for the process lifetime. Used in
// tests and as a fallback when no durable backend is configured.
type MemoryStore struct {
	mu    sync.Mutex
	state map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.state[key]))
	for k, v := range s.state[key] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Set(key string, value map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]string, len(value))
	for k, v := range value {
		cp[k] = v
	}
	s.state[key] = cp
	return nil
}
