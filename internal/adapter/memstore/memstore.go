// Package memstore provides an in-memory key/value store, used when no
// Redis instance is configured and as a test double. Contents are lost on
// restart, which the optimistic persistence model tolerates.
package memstore

import (
	"context"
	"sync"
)

// Store is a thread-safe in-memory key/value store.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value for key, or "" when the key is absent.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
