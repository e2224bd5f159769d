package artifacts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	data    []byte
	modTime time.Time
}

// MemStore is an in-process Store used by tests and the "memory" backend.
// Contents vanish with the process.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]memEntry)}
}

func (s *MemStore) Write(ctx context.Context, name string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.entries[name] = memEntry{data: cp, modTime: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return cp, nil
}

func (s *MemStore) List(ctx context.Context, prefix string) ([]Info, error) {
	s.mu.RLock()
	out := make([]Info, 0, len(s.entries))
	for name, e := range s.entries {
		if strings.HasPrefix(name, prefix) {
			out = append(out, Info{Name: name, Size: int64(len(e.data)), ModTime: e.modTime})
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	_, ok := s.entries[name]
	delete(s.entries, name)
	s.mu.Unlock()
	return ok, nil
}

func (s *MemStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	_, ok := s.entries[name]
	s.mu.RUnlock()
	return ok, nil
}
