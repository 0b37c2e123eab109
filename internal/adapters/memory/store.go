package memory

import (
	"context"
	"slices"
	"sync"
)

// Store is a process-local ports.SnapshotStore. Nothing survives a restart.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return slices.Clone(b), ok, nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = slices.Clone(blob)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }
