package state

import (
	"sort"
	"sync"
)

var _ Iterable = (*Memory)(nil)

// Memory is an in-process Store for tests, the CLI and ephemeral nodes.
type Memory struct {
	mu     sync.RWMutex
	m      map[string][]byte
	writes int
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *Memory) PutState(key string, value []byte) error {
	if err := CheckPut(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string][]byte)
	}
	s.m[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

func (s *Memory) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// Writes returns the number of successful PutState calls.
func (s *Memory) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
