package catalog

import (
	"context"
	"sync"

	"github.com/coco/coco/internal/domain/codes"
)

// MemoryRepository is an in-memory catalog repository. It backs tests and
// CSV-only deployments where no Postgres reference store is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	systems map[codes.ResourceType][]*Entry
}

// NewMemoryRepository creates an empty in-memory catalog repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{systems: make(map[codes.ResourceType][]*Entry)}
}

// Load registers the catalog entries for one code system, replacing any
// previous load.
func (r *MemoryRepository) Load(system codes.ResourceType, entries []*Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems[system] = entries
}

// Entries implements Repository.
func (r *MemoryRepository) Entries(_ context.Context, system codes.ResourceType) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries, ok := r.systems[system]
	if !ok || len(entries) == 0 {
		return nil, ErrCatalogUnavailable
	}
	return entries, nil
}
