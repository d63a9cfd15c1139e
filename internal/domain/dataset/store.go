package dataset

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownDataset indicates the requested dataset id is not cached.
var ErrUnknownDataset = errors.New("unknown dataset")

// MemoryStore caches snapshots by id for the lifetime of the process.
// Snapshots are immutable, so the lock only guards the map itself.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Snapshot
}

// NewMemoryStore creates an empty snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[uuid.UUID]*Snapshot)}
}

// Put caches a snapshot.
func (s *MemoryStore) Put(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snap
}

// Get returns the snapshot for the id, or ErrUnknownDataset.
func (s *MemoryStore) Get(id uuid.UUID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, ErrUnknownDataset
	}
	return snap, nil
}

// IDs lists the cached dataset ids in stable order.
func (s *MemoryStore) IDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(s.snapshots))
	for id := range s.snapshots {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
