package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory snapshot store for tests and single-process
// CLI usage.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

// Save persists a snapshot, overwriting any existing one with the same ID.
func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.snapshots[s.ID] = &cp
	return nil
}

// Get retrieves a snapshot by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *s
	return &cp, nil
}

// Latest retrieves the most recent snapshot for a case.
func (m *MemoryStore) Latest(ctx context.Context, caseID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Snapshot
	for _, s := range m.snapshots {
		if s.CaseID != caseID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, noneForCase(caseID)
	}
	cp := *latest
	return &cp, nil
}

// List returns brief descriptors for a case's snapshots, newest first.
func (m *MemoryStore) List(ctx context.Context, caseID string, limit int) ([]Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var refs []Ref
	for _, s := range m.snapshots {
		if s.CaseID != caseID {
			continue
		}
		refs = append(refs, Ref{
			ID:          s.ID,
			CaseID:      s.CaseID,
			CreatedAt:   s.CreatedAt,
			NetworkHash: s.NetworkHash,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].CreatedAt.After(refs[j].CreatedAt) })
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// Close does nothing for the in-memory store.
func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
