// Package store provides the swappable snapshot persistence backends:
// an in-process map, a sqlite database and a redis server. The session
// persists a full snapshot after every mutation, last write wins.
package store

import (
	"context"
	"sync"

	"github.com/crowdfeud/go-feud/internal/domain"
	"github.com/crowdfeud/go-feud/internal/ports"
)

var _ ports.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore keeps snapshots in process memory: state survives session
// rebuilds within the same process but not a restart. Safe for
// concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]domain.Snapshot)}
}

// Save implements SnapshotStore.
func (s *MemoryStore) Save(_ context.Context, key string, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = snapshot
	return nil
}

// Load implements SnapshotStore.
func (s *MemoryStore) Load(_ context.Context, key string) (domain.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	return snap, ok, nil
}

// Delete implements SnapshotStore.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, key)
	return nil
}
