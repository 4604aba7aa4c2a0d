// Package memory provides a process-lifetime key/value store.
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu    sync.Mutex
	items map[string]string
}

func New() *Store {
	return &Store{items: make(map[string]string)}
}

// NewWithItems seeds the store, e.g. with a previously exported document.
func NewWithItems(items map[string]string) *Store {
	s := New()
	for k, v := range items {
		s.items[k] = v
	}
	return s
}

// GetItem returns the stored value for key.
func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

// SetItem overwrites the value for key.
func (s *Store) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
